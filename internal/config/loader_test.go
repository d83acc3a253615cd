package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/cohort/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		_ = os.Setenv("COHORT_ENV_FILE", "/non/existent/.env")
		defer clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New())
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("COHORT_ADDR", ":8080")
			_ = os.Setenv("COHORT_MIN_GROUP_SCORE", "0.6")
			_ = os.Setenv("COHORT_COOLDOWN_WEEKS", "4")
			_ = os.Setenv("COHORT_GROUP_SIZES", "3,4,5")
			_ = os.Setenv("COHORT_ALLOW_PAIR_ONLY_GROUPS", "true")
			_ = os.Setenv("COHORT_SCHEDULE_WEEKDAY", "sunday")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.MinGroupScore, convey.ShouldEqual, 0.6)
				convey.So(cfg.CooldownWeeks, convey.ShouldEqual, 4)
				convey.So(cfg.GroupSizes, convey.ShouldResemble, []int{3, 4, 5})
				convey.So(cfg.AllowPairOnlyGroups, convey.ShouldBeTrue)
				convey.So(cfg.ScheduleWeekday, convey.ShouldEqual, "sunday")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempFile("cohort-config-*.yaml", `
addr: ":9090"
cooldown_weeks: 8
log_format: json
weight_specialty: 0.25
weight_interests: 0.25
weight_proximity: 0.25
weight_availability: 0.25
`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("COHORT_CONFIG", tmpFile)
			_ = os.Setenv("COHORT_ADDR", ":8080")

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.CooldownWeeks, convey.ShouldEqual, 8)
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
				convey.So(cfg.WeightAvailability, convey.ShouldEqual, 0.25)
				convey.So(cfg.MinGroupScore, convey.ShouldEqual, 0.55)
			})
		})

		convey.Convey("When a .env file is present", func() {
			tmpFile := createTempFile("cohort-*.env", "COHORT_COOLDOWN_WEEKS=3\nCOHORT_ADDR=:7000\n")
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("COHORT_ENV_FILE", tmpFile)
			_ = os.Setenv("COHORT_ADDR", ":8080")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it fills in values without overriding the real environment", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.CooldownWeeks, convey.ShouldEqual, 3)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempFile("cohort-config-*.yaml", `invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("COHORT_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("COHORT_CONFIG", "/non/existent/file.yaml")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("COHORT_ADDR", "")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When weights from the environment do not sum to one", func() {
			_ = os.Setenv("COHORT_WEIGHT_PROXIMITY", "0.9")

			_, err := config.Load(ctx)

			convey.Convey("Then loading fails validation", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a number is malformed", func() {
			_ = os.Setenv("COHORT_COOLDOWN_WEEKS", "not_a_number")

			_, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"COHORT_CONFIG",
		"COHORT_ENV_FILE",
		"COHORT_ADDR",
		"COHORT_LOG_FORMAT",
		"COHORT_MIN_GROUP_SCORE",
		"COHORT_COOLDOWN_WEEKS",
		"COHORT_GROUP_SIZES",
		"COHORT_ALLOW_PAIR_ONLY_GROUPS",
		"COHORT_SCHEDULE_WEEKDAY",
		"COHORT_WEIGHT_PROXIMITY",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempFile(pattern, content string) string {
	tmpFile, err := os.CreateTemp("", pattern)
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
