package web

import "github.com/arafateouronile-glitch/EDUZEN-sub009/pkg/docrender"

type Result struct {
	Code int    `json:"code"`
	Msg  string `json:"msg,omitempty"`
	Data any    `json:"data,omitempty"`
}

type RenderReq struct {
	Template  *docrender.Template `json:"template"`
	Variables map[string]any      `json:"variables"`
}

type RenderFragmentReq struct {
	Text      string         `json:"text"`
	Variables map[string]any `json:"variables"`
}

type ValidateReq struct {
	Template *docrender.Template `json:"template"`
}

type RenderVO struct {
	HTML      string             `json:"html"`
	PageCount int                `json:"pageCount"`
	Geometry  docrender.Geometry `json:"geometry"`
}

type FragmentVO struct {
	HTML string `json:"html"`
}

var (
	invalidRequestResult  = Result{Code: 400001, Msg: "invalid request body"}
	missingTemplateResult = Result{Code: 400002, Msg: "template is required"}
	badTemplateResult     = Result{Code: 422001, Msg: "template cannot be rendered"}
	systemErrorResult     = Result{Code: 500001, Msg: "system error"}
)
