package publishcmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-postpress/internal/media"
	"github.com/goliatone/go-postpress/internal/publish"
)

const publishPostMessageType = "postpress.publish.post"

// ResultCallback receives the publish result. It is invoked synchronously
// from the handler once the post is live.
type ResultCallback func(ResultEnvelope)

// ResultEnvelope carries the outcome of a publish command.
type ResultEnvelope struct {
	Result   *publish.Result
	Metadata map[string]any
}

// PublishPostCommand publishes one markdown post.
type PublishPostCommand struct {
	Title       string             `json:"title"`
	Markdown    string             `json:"markdown"`
	Description string             `json:"description,omitempty"`
	Author      string             `json:"author,omitempty"`
	Tags        string             `json:"tags,omitempty"`
	Template    string             `json:"template,omitempty"`
	Attachments []media.Attachment `json:"-"`

	ResultCallback ResultCallback `json:"-"`
}

// Type implements command.Message.
func (PublishPostCommand) Type() string { return publishPostMessageType }

// Validate requires a title and a markdown body and checks attachment fields.
func (m PublishPostCommand) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Title, validation.By(notBlank("title"))),
		validation.Field(&m.Markdown, validation.By(notBlank("markdown"))),
		validation.Field(&m.Attachments, validation.By(knownAttachments)),
	)
}

// Request converts the command into a publish request.
func (m PublishPostCommand) Request() publish.Request {
	return publish.Request{
		Title:       m.Title,
		Markdown:    m.Markdown,
		Description: m.Description,
		Author:      m.Author,
		Tags:        m.Tags,
		Template:    m.Template,
		Attachments: m.Attachments,
	}
}

func notBlank(field string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if strings.TrimSpace(s) == "" {
			return validation.NewError("postpress.publish."+field+"_required", field+" is required")
		}
		return nil
	}
}

func knownAttachments(value any) error {
	attachments, _ := value.([]media.Attachment)
	for _, attachment := range attachments {
		if !media.KnownField(attachment.Field) {
			return validation.NewError("postpress.publish.attachment_invalid", "unsupported attachment field "+attachment.Field)
		}
	}
	return nil
}
