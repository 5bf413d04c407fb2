package web

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/arafateouronile-glitch/EDUZEN-sub009/pkg/docrender"
)

// Renderer is the part of *docrender.Engine the HTTP layer needs.
type Renderer interface {
	Render(ctx context.Context, tpl *docrender.Template, vars map[string]any) (*docrender.Result, error)
	RenderFragment(ctx context.Context, text string, vars map[string]any) (string, error)
	Validate(tpl *docrender.Template) *docrender.ValidationResult
}

type Handler struct {
	svc    Renderer
	logger *zap.Logger
}

func NewHandler(svc Renderer, logger *zap.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger,
	}
}

func (h *Handler) RegisterRoutes(server *gin.Engine) {
	server.GET("/health", h.Health)
	server.POST("/render", h.Render)
	server.POST("/render/fragment", h.RenderFragment)
	server.POST("/validate", h.Validate)
}

func (h *Handler) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, Result{Msg: "ok"})
}

// Render returns the assembled document. With ?format=html the document is
// written as text/html instead of the JSON envelope.
func (h *Handler) Render(ctx *gin.Context) {
	var req RenderReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, invalidRequestResult)
		return
	}
	if req.Template == nil {
		ctx.JSON(http.StatusBadRequest, missingTemplateResult)
		return
	}

	res, err := h.svc.Render(ctx.Request.Context(), req.Template, req.Variables)
	if err != nil {
		h.writeError(ctx, err, zap.String("template_id", req.Template.ID))
		return
	}

	if ctx.Query("format") == "html" {
		ctx.Data(http.StatusOK, "text/html; charset=utf-8", []byte(res.HTML))
		return
	}
	ctx.JSON(http.StatusOK, Result{
		Data: RenderVO{
			HTML:      res.HTML,
			PageCount: res.PageCount,
			Geometry:  res.Geometry,
		},
	})
}

func (h *Handler) RenderFragment(ctx *gin.Context) {
	var req RenderFragmentReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, invalidRequestResult)
		return
	}

	out, err := h.svc.RenderFragment(ctx.Request.Context(), req.Text, req.Variables)
	if err != nil {
		h.writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, Result{Data: FragmentVO{HTML: out}})
}

func (h *Handler) Validate(ctx *gin.Context) {
	var req ValidateReq
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, invalidRequestResult)
		return
	}
	if req.Template == nil {
		ctx.JSON(http.StatusBadRequest, missingTemplateResult)
		return
	}
	ctx.JSON(http.StatusOK, Result{Data: h.svc.Validate(req.Template)})
}

// writeError maps unresolved placeholders under the "error" policy to 422 and
// everything else to 500. Unbalanced control markers never fail a render; they
// are reported by /validate.
func (h *Handler) writeError(ctx *gin.Context, err error, fields ...zap.Field) {
	if docrender.IsUnresolvedPlaceholder(err) {
		ctx.JSON(http.StatusUnprocessableEntity, Result{
			Code: badTemplateResult.Code,
			Msg:  badTemplateResult.Msg,
			Data: err.Error(),
		})
		return
	}
	h.logger.Error("render request failed", append(fields, zap.Error(err))...)
	ctx.JSON(http.StatusInternalServerError, systemErrorResult)
}
