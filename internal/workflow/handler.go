package workflow

import (
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/Kyz7/hub/internal/middleware"
	"github.com/Kyz7/hub/internal/models"
	"github.com/Kyz7/hub/internal/response"
	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type submitRequest struct {
	Values  map[string]*string `json:"values"`
	Actions []string           `json:"actions"`
}

type addContentRequest struct {
	Kind string `json:"kind"`
	submitRequest
}

// parseTransition reads names such as "confirm_update_en" or
// "request_update". A name without a locale falls back to the given one.
func parseTransition(name string, fallback models.Locale) (Transition, bool) {
	for _, a := range []Action{ActionRequestUpdate, ActionConfirmUpdate, ActionRejectUpdate} {
		if name == string(a) {
			return Transition{Action: a, Locale: fallback}, true
		}
		if rest, ok := strings.CutPrefix(name, string(a)+"_"); ok {
			l, ok := models.ParseLocale(rest)
			if !ok || l == models.LocaleNone {
				return Transition{}, false
			}
			return Transition{Action: a, Locale: l}, true
		}
	}
	return Transition{}, false
}

const (
	maxUploadSize      = 10 * 1024 * 1024
	maxVideoUploadSize = 100 * 1024 * 1024
)

func uploadLimit(file *multipart.FileHeader) int64 {
	if strings.HasPrefix(file.Header.Get("Content-Type"), "video/") {
		return maxVideoUploadSize
	}
	return maxUploadSize
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(string(c.Request().Header.ContentType()), fiber.MIMEMultipartForm)
}

// parseSubmission accepts a JSON body or a multipart form with "actions",
// "value_en", "value_uk", "value" and an optional "file". The returned
// closer releases the uploaded file.
func parseSubmission(c *fiber.Ctx, fallback models.Locale) (Submission, func(), map[string]string) {
	var req addContentRequest
	closer := func() {}

	var file *multipart.FileHeader
	if isMultipart(c) {
		form, err := c.MultipartForm()
		if err != nil {
			return Submission{}, closer, map[string]string{"body": "invalid form data"}
		}
		req.Actions = form.Value["actions"]
		req.Values = map[string]*string{}
		for key, vals := range form.Value {
			name, ok := strings.CutPrefix(key, "value")
			if !ok || len(vals) == 0 {
				continue
			}
			v := vals[0]
			req.Values[strings.TrimPrefix(name, "_")] = &v
		}
		if files := form.File["file"]; len(files) > 0 {
			file = files[0]
		}
	} else if err := c.BodyParser(&req); err != nil {
		return Submission{}, closer, map[string]string{"body": "invalid request body"}
	}

	sub := Submission{Values: map[models.Locale]*string{}}
	for _, name := range req.Actions {
		t, ok := parseTransition(name, fallback)
		if !ok {
			return Submission{}, closer, map[string]string{"actions": "unknown action " + name}
		}
		sub.Transitions = append(sub.Transitions, t)
	}
	for key, v := range req.Values {
		l, ok := models.ParseLocale(key)
		if !ok {
			return Submission{}, closer, map[string]string{"values": "unknown locale " + key}
		}
		sub.Values[l] = v
	}

	if file != nil {
		if limit := uploadLimit(file); file.Size > limit {
			return Submission{}, closer, map[string]string{"file": fmt.Sprintf("file is larger than %d MB", limit/(1024*1024))}
		}
		f, err := file.Open()
		if err != nil {
			return Submission{}, closer, map[string]string{"file": "could not read upload"}
		}
		closer = func() { f.Close() }
		sub.Upload = &Upload{
			Filename:    file.Filename,
			ContentType: file.Header.Get("Content-Type"),
			Body:        f,
		}
	}
	return sub, closer, nil
}

func outcome(c *fiber.Ctx, res *Result, data interface{}, message string) error {
	return response.Outcome(c, data, message, res.Warnings, res.Redirect)
}

func idParam(c *fiber.Ctx) (uint, bool) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, false
	}
	return uint(id), true
}

func (h *Handler) SubmitSection(c *fiber.Ctx) error {
	id, ok := idParam(c)
	if !ok {
		return response.BadRequest(c, "Invalid section ID", nil)
	}

	sub, closer, errs := parseSubmission(c, models.MatchLocale(c.Get(fiber.HeaderAcceptLanguage)))
	defer closer()
	if errs != nil {
		return response.ValidationError(c, errs)
	}

	res, err := h.service.SubmitSection(c.UserContext(), middleware.Principal(c), id, sub)
	if err != nil {
		return response.FromError(c, err)
	}
	return outcome(c, res, nil, "Section updated")
}

func (h *Handler) PublishSection(c *fiber.Ctx) error {
	id, ok := idParam(c)
	if !ok {
		return response.BadRequest(c, "Invalid section ID", nil)
	}
	res, err := h.service.PublishSection(c.UserContext(), middleware.Principal(c), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return outcome(c, res, nil, "Section publish processed")
}

func (h *Handler) UnpublishSection(c *fiber.Ctx) error {
	id, ok := idParam(c)
	if !ok {
		return response.BadRequest(c, "Invalid section ID", nil)
	}
	res, err := h.service.UnpublishSection(c.UserContext(), middleware.Principal(c), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return outcome(c, res, nil, "Section unpublished")
}

func (h *Handler) DeleteSection(c *fiber.Ctx) error {
	id, ok := idParam(c)
	if !ok {
		return response.BadRequest(c, "Invalid section ID", nil)
	}
	res, err := h.service.DeleteSection(c.UserContext(), middleware.Principal(c), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return outcome(c, res, nil, "Section deleted")
}

func (h *Handler) AddContent(c *fiber.Ctx) error {
	id, ok := idParam(c)
	if !ok {
		return response.BadRequest(c, "Invalid section ID", nil)
	}

	kind := c.Query("kind")
	if kind == "" {
		kind = c.FormValue("kind")
	}
	if kind == "" && !isMultipart(c) {
		var body addContentRequest
		if err := c.BodyParser(&body); err == nil {
			kind = body.Kind
		}
	}

	sub, closer, errs := parseSubmission(c, models.LocaleNone)
	defer closer()
	if errs != nil {
		return response.ValidationError(c, errs)
	}

	content, res, err := h.service.AddContent(c.UserContext(), middleware.Principal(c), id, models.ContentKind(kind), sub)
	if err != nil {
		return response.FromError(c, err)
	}
	c.Status(fiber.StatusCreated)
	return outcome(c, res, content, "Content added")
}

func (h *Handler) SubmitContent(c *fiber.Ctx) error {
	id, ok := idParam(c)
	if !ok {
		return response.BadRequest(c, "Invalid content ID", nil)
	}

	sub, closer, errs := parseSubmission(c, models.LocaleNone)
	defer closer()
	if errs != nil {
		return response.ValidationError(c, errs)
	}

	res, err := h.service.SubmitContent(c.UserContext(), middleware.Principal(c), id, sub)
	if err != nil {
		return response.FromError(c, err)
	}
	message := "Content updated"
	if res.Deleted {
		message = "Content removed"
	}
	return outcome(c, res, nil, message)
}

func (h *Handler) DisplayContent(c *fiber.Ctx) error {
	id, ok := idParam(c)
	if !ok {
		return response.BadRequest(c, "Invalid content ID", nil)
	}
	res, err := h.service.DisplayContent(c.UserContext(), middleware.Principal(c), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return outcome(c, res, nil, "Content display processed")
}

func (h *Handler) HideContent(c *fiber.Ctx) error {
	id, ok := idParam(c)
	if !ok {
		return response.BadRequest(c, "Invalid content ID", nil)
	}
	res, err := h.service.HideContent(c.UserContext(), middleware.Principal(c), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return outcome(c, res, nil, "Content hidden")
}

func (h *Handler) DeleteContent(c *fiber.Ctx) error {
	id, ok := idParam(c)
	if !ok {
		return response.BadRequest(c, "Invalid content ID", nil)
	}
	res, err := h.service.DeleteContent(c.UserContext(), middleware.Principal(c), id)
	if err != nil {
		return response.FromError(c, err)
	}
	return outcome(c, res, nil, "Content deleted")
}

func (h *Handler) ReorderSections(c *fiber.Ctx) error {
	var positions map[string]int
	if err := c.BodyParser(&positions); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}
	ids, err := h.service.ReorderSections(c.UserContext(), middleware.Principal(c), positions)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, fiber.Map{"ids": ids}, "Sections reordered")
}

func (h *Handler) ReorderContents(c *fiber.Ctx) error {
	var positions map[string]int
	if err := c.BodyParser(&positions); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}
	ids, err := h.service.ReorderContents(c.UserContext(), middleware.Principal(c), positions)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, fiber.Map{"ids": ids}, "Contents reordered")
}

func (h *Handler) SectionHistory(c *fiber.Ctx) error {
	return h.history(c, models.TargetSection)
}

func (h *Handler) ContentHistory(c *fiber.Ctx) error {
	return h.history(c, models.TargetContent)
}

func (h *Handler) history(c *fiber.Ctx, target string) error {
	id, ok := idParam(c)
	if !ok {
		return response.BadRequest(c, "Invalid ID", nil)
	}
	history, err := h.service.History(c.UserContext(), target, id)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, history, "History retrieved successfully")
}
