package config_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/larriantoniy/tg_relay_bot/internal/config"
)

var _ = Describe("Strings", func() {
	It("should load the embedded catalogue", func() {
		s, err := config.LoadStrings("")

		Expect(err).NotTo(HaveOccurred())
		Expect(s.DefaultLocale).To(Equal("en"))
		Expect(s.Locales).To(HaveKey("en"))
		Expect(s.Locales).To(HaveKey("id"))
		Expect(s.Admin.HasPrivateForwards).To(ContainSubstring("%d"))
		Expect(s.Commands).NotTo(BeEmpty())
	})

	It("should fall back to the default locale", func() {
		s, err := config.LoadStrings("")
		Expect(err).NotTo(HaveOccurred())

		Expect(s.Locale("fr")).To(Equal(s.Locales["en"]))
		Expect(s.Locale("id")).To(Equal(s.Locales["id"]))
	})

	It("should overlay texts from a file", func() {
		path := writeFile(GinkgoT().TempDir(), "strings.yml", `
locales:
  de:
    start: "Hallo %s %s"
    start_conversation: "Schreib %s"
    not_allowed: "Nein"
    start_button: "Los"
    back_button: "Zurück"
admin:
  no_message: "Antworte auf eine Nachricht."
`)

		s, err := config.LoadStrings(path)

		Expect(err).NotTo(HaveOccurred())
		Expect(s.Locale("de").StartButton).To(Equal("Los"))
		Expect(s.Locale("en").StartButton).NotTo(BeEmpty())
		Expect(s.Admin.NoMessage).To(Equal("Antworte auf eine Nachricht."))
		Expect(s.Admin.UserNotFound).To(Equal("User_id not found."))
	})

	It("should reject an unknown default locale", func() {
		path := writeFile(GinkgoT().TempDir(), "strings.yml", "default_locale: xx\n")

		_, err := config.LoadStrings(path)

		Expect(err).To(MatchError(ContainSubstring(`"xx"`)))
	})
})
