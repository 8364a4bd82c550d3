package tg

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/zelenin/go-tdlib/client"
)

func entity(offset, length int32, t client.TextEntityType) *client.TextEntity {
	return &client.TextEntity{Offset: offset, Length: length, Type: t}
}

var _ = Describe("renderHTML", func() {
	It("should escape text without entities", func() {
		Expect(renderHTML(`a < b & "c"`, nil)).To(Equal("a &lt; b &amp; &#34;c&#34;"))
	})

	It("should wrap simple entities", func() {
		got := renderHTML("bold and italic", []*client.TextEntity{
			entity(0, 4, &client.TextEntityTypeBold{}),
			entity(9, 6, &client.TextEntityTypeItalic{}),
		})

		Expect(got).To(Equal("<b>bold</b> and <i>italic</i>"))
	})

	It("should nest entities", func() {
		got := renderHTML("outer inner", []*client.TextEntity{
			entity(6, 5, &client.TextEntityTypeItalic{}),
			entity(0, 11, &client.TextEntityTypeBold{}),
		})

		Expect(got).To(Equal("<b>outer <i>inner</i></b>"))
	})

	It("should count offsets in UTF-16 units", func() {
		// 😀 занимает две единицы UTF-16
		got := renderHTML("😀 hi", []*client.TextEntity{
			entity(3, 2, &client.TextEntityTypeUnderline{}),
		})

		Expect(got).To(Equal("😀 <u>hi</u>"))
	})

	It("should render links and mentions", func() {
		got := renderHTML("site user", []*client.TextEntity{
			entity(0, 4, &client.TextEntityTypeTextUrl{Url: "https://example.com/?a=1&b=2"}),
			entity(5, 4, &client.TextEntityTypeMentionName{UserId: 42}),
		})

		Expect(got).To(Equal(`<a href="https://example.com/?a=1&amp;b=2">site</a> <a href="tg://user?id=42">user</a>`))
	})

	It("should render code blocks with language", func() {
		got := renderHTML("x := 1", []*client.TextEntity{
			entity(0, 6, &client.TextEntityTypePreCode{Language: "go"}),
		})

		Expect(got).To(Equal(`<pre><code class="language-go">x := 1</code></pre>`))
	})

	It("should keep entities without html form as text", func() {
		got := renderHTML("#tag @user", []*client.TextEntity{
			entity(0, 4, &client.TextEntityTypeHashtag{}),
			entity(5, 5, &client.TextEntityTypeMention{}),
		})

		Expect(got).To(Equal("#tag @user"))
	})

	It("should close entities that run to the end", func() {
		got := renderHTML("spoiler", []*client.TextEntity{
			entity(0, 7, &client.TextEntityTypeSpoiler{}),
			entity(0, 7, &client.TextEntityTypeStrikethrough{}),
		})

		Expect(got).To(Equal("<tg-spoiler><s>spoiler</s></tg-spoiler>"))
	})
})
