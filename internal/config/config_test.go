package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/larriantoniy/tg_relay_bot/internal/config"
)

func writeFile(dir, name, body string) string {
	path := filepath.Join(dir, name)
	Expect(os.WriteFile(path, []byte(body), 0o600)).To(Succeed())
	return path
}

var _ = Describe("AppConfig", func() {
	Describe("LoadPath", func() {
		It("should read yaml and apply defaults", func() {
			path := writeFile(GinkgoT().TempDir(), "config.yml", `
api_id: 12345
api_hash: hash
bot_token: "123:abc"
admin_id: 777
store:
  driver: sqlite
  sqlite_path: /tmp/relay.db
proxy:
  server: 127.0.0.1
  port: 1080
`)

			cfg, err := config.LoadPath(path)

			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.ApiID).To(Equal(int32(12345)))
			Expect(cfg.BotToken).To(Equal("123:abc"))
			Expect(cfg.AdminID).To(Equal(int64(777)))
			Expect(cfg.Env).To(Equal("prod"))
			Expect(cfg.SessionTTL).To(Equal(24 * time.Hour))
			Expect(cfg.SendTimeout).To(Equal(30 * time.Second))
			Expect(cfg.Store.Driver).To(Equal(config.StoreSQLite))
			Expect(cfg.Store.SQLitePath).To(Equal("/tmp/relay.db"))
			Expect(cfg.Store.KeyPrefix).To(Equal("relay"))
			Expect(cfg.Proxy.Enabled()).To(BeTrue())
		})

		It("should fail on missing required settings", func() {
			path := writeFile(GinkgoT().TempDir(), "config.yml", "env: dev\n")

			_, err := config.LoadPath(path)

			Expect(err).To(MatchError(ContainSubstring("TOKEN")))
			Expect(err).To(MatchError(ContainSubstring("ADMINS")))
		})

		It("should fail on a missing file", func() {
			_, err := config.LoadPath(filepath.Join(GinkgoT().TempDir(), "nope.yml"))

			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Validate", func() {
		valid := func() config.AppConfig {
			return config.AppConfig{
				BaseDir:  "./tdlib",
				ApiID:    1,
				ApiHash:  "h",
				BotToken: "t",
				AdminID:  1,
				Store:    config.StoreConfig{Driver: config.StoreRedis},
			}
		}

		It("should accept a complete config", func() {
			cfg := valid()
			Expect(cfg.Validate()).To(Succeed())
		})

		It("should reject unknown store drivers", func() {
			cfg := valid()
			cfg.Store.Driver = "mongo"

			Expect(cfg.Validate()).To(MatchError(ContainSubstring(`"mongo"`)))
		})

		It("should treat proxy without port as disabled", func() {
			cfg := valid()
			cfg.Proxy.Server = "proxy.local"

			Expect(cfg.Proxy.Enabled()).To(BeFalse())
		})
	})
})
