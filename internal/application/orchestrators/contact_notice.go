package orchestrators

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"fashionablylate/internal/adapters/email"
	"fashionablylate/internal/domain/contact"
)

// noticeRenderer leaves WithUnsafe unset so raw HTML typed by a visitor is dropped.
var noticeRenderer = goldmark.New(
	goldmark.WithExtensions(extension.Table),
	goldmark.WithRendererOptions(goldmarkHTML.WithHardWraps()),
)

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "`", "\\`", "*", `\*`, "_", `\_`, "[", `\[`, "]", `\]`,
	"#", `\#`, "|", `\|`, "<", `\<`, ">", `\>`, "!", `\!`,
)

// ContactNotice builds the staff notification for a stored contact.
// The body is written as Markdown (also sent as the text part) and rendered to HTML with goldmark.
// POST: Returned message has no recipients set
func ContactNotice(id int64, sub contact.Submission, categoryLabel string, storedAt time.Time) (email.Message, error) {
	if categoryLabel == "" {
		categoryLabel = contact.UnselectedLabel
	}
	building := sub.Building
	if building == "" {
		building = "-"
	}

	var md strings.Builder
	fmt.Fprintf(&md, "## お問い合わせ #%d\n\n", id)
	md.WriteString("| 項目 | 内容 |\n|---|---|\n")
	rows := [][2]string{
		{"お名前", sub.FullName()},
		{"性別", sub.Gender.Label()},
		{"メールアドレス", sub.Email},
		{"電話番号", sub.Tell},
		{"住所", sub.Address},
		{"建物名", building},
		{"お問い合わせの種類", categoryLabel},
		{"受付日時", storedAt.Format("2006年01月02日 15:04")},
	}
	for _, r := range rows {
		fmt.Fprintf(&md, "| %s | %s |\n", r[0], markdownEscaper.Replace(r[1]))
	}
	md.WriteString("\n### お問い合わせ内容\n\n")
	md.WriteString(markdownEscaper.Replace(sub.Detail))
	md.WriteString("\n")

	var html bytes.Buffer
	if err := noticeRenderer.Convert([]byte(md.String()), &html); err != nil {
		return email.Message{}, fmt.Errorf("render notice: %w", err)
	}
	return email.Message{
		Subject: fmt.Sprintf("【FashionablyLate】新しいお問い合わせ (%s)", categoryLabel),
		HTML:    html.String(),
		Text:    md.String(),
		ReplyTo: sub.Email,
		Tags:    map[string]string{"kind": "contact", "contact_id": strconv.FormatInt(id, 10)},
	}, nil
}
