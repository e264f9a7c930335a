package config_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/freethrow/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.TrialPattern, convey.ShouldEqual, "BB_FT_*.json")
			convey.So(cfg.Spread, convey.ShouldEqual, "sample")
			convey.So(cfg.Store, convey.ShouldEqual, config.StoreMemory)
			convey.So(cfg.MQTTBroker, convey.ShouldBeEmpty)
		})

		convey.Convey("Then the defaults validate", func() {
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with one invalid field", t, func() {
		cases := []struct {
			name   string
			mutate func(*config.Config)
		}{
			{"empty addr", func(c *config.Config) { c.Addr = "" }},
			{"empty data dir", func(c *config.Config) { c.DataDir = "" }},
			{"empty participant", func(c *config.Config) { c.ParticipantID = "" }},
			{"empty pattern", func(c *config.Config) { c.TrialPattern = "" }},
			{"unknown spread", func(c *config.Config) { c.Spread = "median" }},
			{"unknown log format", func(c *config.Config) { c.LogFormat = "xml" }},
			{"unknown store", func(c *config.Config) { c.Store = "postgres" }},
			{"sqlite without path", func(c *config.Config) { c.Store = config.StoreSQLite; c.SQLitePath = "" }},
			{"broker without topic", func(c *config.Config) { c.MQTTBroker = "tcp://localhost:1883"; c.MQTTTopic = "" }},
		}

		for _, tc := range cases {
			convey.Convey("When the config has "+tc.name, func() {
				cfg := config.New(context.Background())
				tc.mutate(cfg)

				convey.Convey("Then validation fails with ErrInvalidConfig", func() {
					err := cfg.Validate()
					convey.So(err, convey.ShouldNotBeNil)
					convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				})
			})
		}

		convey.Convey("When the population spread and sqlite store are chosen", func() {
			cfg := config.New(context.Background())
			cfg.Spread = "population"
			cfg.Store = config.StoreSQLite

			convey.Convey("Then the config is valid", func() {
				convey.So(cfg.Validate(), convey.ShouldBeNil)
			})
		})
	})
}
