package main

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"
	"gopkg.in/yaml.v3"

	"github.com/okian/challengeboard/internal/config"
	"github.com/okian/challengeboard/pkg/logger"
)

func init() {
	_ = logger.Init(logger.WithWriter(io.Discard))
}

func TestLoadEnvFile(t *testing.T) {
	convey.Convey("Given a dotenv file", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, ".env")
		convey.So(os.WriteFile(path, []byte("KIOSK_TEST_TOP_K=9\n"), 0o600), convey.ShouldBeNil)
		defer func() { _ = os.Unsetenv("KIOSK_TEST_TOP_K") }()

		convey.Convey("When it is loaded", func() {
			err := loadEnvFile(path)

			convey.Convey("Then its variables are in the environment", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(os.Getenv("KIOSK_TEST_TOP_K"), convey.ShouldEqual, "9")
			})
		})

		convey.Convey("When the file does not exist", func() {
			err := loadEnvFile(filepath.Join(dir, "missing.env"))

			convey.Convey("Then it is ignored", func() {
				convey.So(err, convey.ShouldBeNil)
			})
		})

		convey.Convey("When no path is given", func() {
			convey.So(loadEnvFile(""), convey.ShouldBeNil)
		})
	})
}

func TestConfigCommand(t *testing.T) {
	convey.Convey("Given the config subcommand", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "event.yaml")
		convey.So(os.WriteFile(path, []byte("challenge_kind: feet_inches\ntop_k: 5\n"), 0o600), convey.ShouldBeNil)

		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetArgs([]string{"config", "--env-file", "", "--config", path})
		defer rootCmd.SetArgs(nil)

		convey.Convey("When it runs", func() {
			err := rootCmd.Execute()

			convey.Convey("Then it prints the merged configuration as YAML", func() {
				convey.So(err, convey.ShouldBeNil)

				var printed config.Config
				convey.So(yaml.Unmarshal(out.Bytes(), &printed), convey.ShouldBeNil)
				convey.So(printed.ChallengeKind, convey.ShouldEqual, "feet_inches")
				convey.So(printed.TopK, convey.ShouldEqual, 5)
				convey.So(printed.Addr, convey.ShouldEqual, ":8080")
			})
		})
	})
}

func TestVersionCommand(t *testing.T) {
	convey.Convey("Given the version subcommand", t, func() {
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetArgs([]string{"version", "--env-file", ""})
		defer rootCmd.SetArgs(nil)

		convey.So(rootCmd.Execute(), convey.ShouldBeNil)
		convey.So(out.String(), convey.ShouldStartWith, "kiosk dev")
	})
}

func TestNewServer(t *testing.T) {
	convey.Convey("Given a server wired from defaults", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		cfg := config.New(ctx)
		srv, svc, err := newServer(ctx, cfg)
		convey.So(err, convey.ShouldBeNil)
		convey.So(srv.Addr, convey.ShouldEqual, ":8080")
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()

		ts := httptest.NewServer(srv.Handler)
		defer ts.Close()

		convey.Convey("When a participant submits through the API", func() {
			body := `{"name":"Ann","age":30,"measurement":"30"}`
			resp, err := http.Post(ts.URL+"/submissions", "application/json", strings.NewReader(body))
			convey.So(err, convey.ShouldBeNil)
			defer resp.Body.Close()

			convey.Convey("Then the entry is recorded and every surface answers", func() {
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusCreated)

				for _, path := range []string{"/", "/leaderboard", "/chart", "/chart.png", "/session", "/stats", "/healthz", "/openapi.yaml"} {
					r, err := http.Get(ts.URL + path)
					convey.So(err, convey.ShouldBeNil)
					_ = r.Body.Close()
					convey.So(r.StatusCode, convey.ShouldEqual, http.StatusOK)
				}
			})
		})

		convey.Convey("When the configured kind is unknown", func() {
			bad := config.New(ctx)
			bad.ChallengeKind = "marathon"
			_, _, err := newServer(ctx, bad)

			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the metrics updaters", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, svc, err := newServer(ctx, config.New(ctx))
		convey.So(err, convey.ShouldBeNil)

		convey.So(func() { updateSystemMetrics() }, convey.ShouldNotPanic)
		convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
		convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
		convey.So(func() { startServiceMetricsUpdater(ctx, svc) }, convey.ShouldNotPanic)
	})
}
