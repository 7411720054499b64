package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/google/uuid"

	publishcmd "github.com/goliatone/go-postpress/internal/commands/publish"
	"github.com/goliatone/go-postpress/internal/logging"
	"github.com/goliatone/go-postpress/internal/media"
	"github.com/goliatone/go-postpress/internal/posts"
)

// blogCreatePayload is the JSON form of a publish. Tags may be sent as a
// list or as comma separated text; template as a number or a string.
type blogCreatePayload struct {
	Title       string     `json:"title"`
	Markdown    string     `json:"markdown"`
	Description string     `json:"description,omitempty"`
	Author      string     `json:"author,omitempty"`
	Tags        tagsField  `json:"tags,omitempty"`
	Template    flexString `json:"template,omitempty"`
}

type blogCreateResponse struct {
	Success  bool   `json:"success"`
	Page     string `json:"page"`
	Template int    `json:"template"`
}

func (api *BlogAPI) handleCreate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, api.maxUpload)
	ctx := logging.ContextWithFields(r.Context(), map[string]any{
		"request_id":  requestID(r),
		"remote_addr": r.RemoteAddr,
	})
	logger := api.logger.WithContext(ctx)

	msg, cleanup, err := api.decodeCreate(r)
	defer cleanup()
	if err != nil {
		logger.Warn("http.blog.create.rejected", "error", err)
		writeError(w, err)
		return
	}

	var response blogCreateResponse
	msg.ResultCallback = func(env publishcmd.ResultEnvelope) {
		if env.Result == nil {
			return
		}
		response = blogCreateResponse{
			Success:  true,
			Page:     env.Result.URL,
			Template: env.Result.Template.ID(),
		}
	}

	started := api.now()
	if err := api.publisher.Execute(ctx, msg); err != nil {
		logger.Warn("http.blog.create.failed", "error", err, "duration", api.now().Sub(started))
		writeError(w, err)
		return
	}
	logger.Info("http.blog.create.completed",
		"page", response.Page,
		"template", response.Template,
		"attachments", len(msg.Attachments),
		"duration", api.now().Sub(started),
	)
	writeJSON(w, http.StatusOK, response)
}

func (api *BlogAPI) decodeCreate(r *http.Request) (publishcmd.PublishPostCommand, func(), error) {
	noop := func() {}
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "multipart/form-data":
		return api.decodeMultipart(r)
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return publishcmd.PublishPostCommand{}, noop, badRequest(err)
		}
		return commandFromForm(r.PostForm.Get), noop, nil
	default:
		var payload blogCreatePayload
		if err := decodeJSON(r, &payload); err != nil {
			return publishcmd.PublishPostCommand{}, noop, badRequest(err)
		}
		return publishcmd.PublishPostCommand{
			Title:       payload.Title,
			Markdown:    payload.Markdown,
			Description: payload.Description,
			Author:      payload.Author,
			Tags:        string(payload.Tags),
			Template:    string(payload.Template),
		}, noop, nil
	}
}

func (api *BlogAPI) decodeMultipart(r *http.Request) (publishcmd.PublishPostCommand, func(), error) {
	if err := r.ParseMultipartForm(api.maxUpload); err != nil {
		return publishcmd.PublishPostCommand{}, func() {}, badRequest(err)
	}

	var files []multipart.File
	cleanup := func() {
		for _, f := range files {
			_ = f.Close()
		}
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}

	msg := commandFromForm(r.FormValue)
	for _, field := range media.Fields() {
		file, header, err := r.FormFile(field)
		if errors.Is(err, http.ErrMissingFile) {
			continue
		}
		if err != nil {
			return msg, cleanup, badRequest(err)
		}
		files = append(files, file)
		msg.Attachments = append(msg.Attachments, media.Attachment{
			Field:    field,
			Filename: header.Filename,
			Content:  file,
		})
	}
	return msg, cleanup, nil
}

// requestID honours an incoming X-Request-ID so entries can be correlated
// with a proxy, otherwise a new one is minted.
func requestID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get("X-Request-ID")); id != "" {
		return id
	}
	return uuid.NewString()
}

func commandFromForm(get func(string) string) publishcmd.PublishPostCommand {
	return publishcmd.PublishPostCommand{
		Title:       get("title"),
		Markdown:    get("markdown"),
		Description: get("description"),
		Author:      get("author"),
		Tags:        get("tags"),
		Template:    get("template"),
	}
}

func badRequest(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return posts.NewValidationError(fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
	}
	return posts.NewValidationError("malformed request: " + err.Error())
}

type tagsField string

func (t *tagsField) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = tagsField(strings.Join(list, ","))
		return nil
	}
	var text *string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("tags must be a string or a list of strings")
	}
	if text != nil {
		*t = tagsField(*text)
	}
	return nil
}

type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var number json.Number
	if err := json.Unmarshal(data, &number); err == nil {
		*f = flexString(number.String())
		return nil
	}
	var text *string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("template must be a number or a string")
	}
	if text != nil {
		*f = flexString(*text)
	}
	return nil
}

