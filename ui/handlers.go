package ui

import (
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"kickpredict/domain/campaign"
	"kickpredict/domain/core"
	"kickpredict/domain/verdict"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	a.renderTemplate(w, http.StatusOK, "index.html", newFormView())
}

func (a *App) handlePredict(w http.ResponseWriter, r *http.Request) {
	view := newFormView()
	if err := r.ParseForm(); err != nil {
		view.Error = "Could not read the form."
		a.renderTemplate(w, http.StatusBadRequest, "index.html", view)
		return
	}

	values := formValues{
		Name:         r.PostFormValue("name"),
		MainCategory: r.PostFormValue("main_category"),
		Currency:     r.PostFormValue("currency"),
		Country:      r.PostFormValue("country"),
		Deadline:     r.PostFormValue("deadline"),
		Launched:     r.PostFormValue("launched"),
		Pledged:      r.PostFormValue("usd_pledged_real"),
		Goal:         r.PostFormValue("usd_goal_real"),
	}
	view.Input = values

	in, err := values.input()
	if err == nil {
		var v verdict.Verdict
		v, err = a.predictor.Predict(r.Context(), in)
		if err == nil {
			view.Result = &resultView{
				Success:    v.Label == verdict.LabelSuccess,
				Label:      string(v.Label),
				Confidence: v.Confidence(),
				Message:    v.Message,
				Fallbacks:  v.Fallbacks,
			}
			a.renderTemplate(w, http.StatusOK, "index.html", view)
			return
		}
	}

	status := http.StatusInternalServerError
	view.Error = "Prediction failed. Please try again later."
	switch {
	case core.IsInputError(err):
		status = http.StatusUnprocessableEntity
		view.Error = err.Error()
	case core.IsModelUnavailable(err):
		status = http.StatusServiceUnavailable
		view.Error = "The model is not available yet. Run training first."
	default:
		a.logger.Error("form prediction failed: %v", err)
	}
	a.renderTemplate(w, status, "index.html", view)
}

func (a *App) handleModel(w http.ResponseWriter, r *http.Request) {
	report, err := a.reports.LoadReport(r.Context())
	if err != nil {
		status := http.StatusInternalServerError
		if core.IsNotFoundError(err) {
			status = http.StatusNotFound
		} else {
			a.logger.Error("failed to load training report: %v", err)
		}
		a.renderTemplate(w, status, "model.html", map[string]interface{}{
			"Error": "No training report is available.",
		})
		return
	}

	a.renderTemplate(w, http.StatusOK, "model.html", map[string]interface{}{
		"Report": renderMarkdown(report),
	})
}

// renderMarkdown converts a training report to HTML. Raw HTML in the source is dropped.
func renderMarkdown(md []byte) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.SkipHTML})
	return template.HTML(markdown.ToHTML(md, p, renderer))
}

// input converts form strings into a predictor input. Blank amounts stay nil
// so the predictor reports them as missing.
func (f formValues) input() (campaign.Input, error) {
	pledged, err := parseAmount(campaign.ColumnUSDPledgedReal, f.Pledged)
	if err != nil {
		return campaign.Input{}, err
	}
	goal, err := parseAmount(campaign.ColumnUSDGoalReal, f.Goal)
	if err != nil {
		return campaign.Input{}, err
	}
	return campaign.Input{
		Name:           f.Name,
		MainCategory:   f.MainCategory,
		Currency:       f.Currency,
		Country:        f.Country,
		Deadline:       f.Deadline,
		Launched:       f.Launched,
		USDPledgedReal: pledged,
		USDGoalReal:    goal,
	}, nil
}

func parseAmount(field, s string) (*float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, &core.InvalidFieldError{Field: field, Reason: "must be a number"}
	}
	return &v, nil
}
