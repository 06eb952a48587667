package handler

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rpgo/retirement-projector/internal/domain"
	"github.com/rpgo/retirement-projector/pkg/money"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"curr": func(d decimal.Decimal) string { return money.FromDecimal(d).Format() },
	"pct":  func(d decimal.Decimal) string { return money.ToPercent(d).StringFixed(2) + "%" },
}).ParseFS(templateFS, "templates/*.html.tmpl"))

// projectionForm holds the submitted values so the form can be re-rendered as entered.
type projectionForm struct {
	CurrentAge          string
	RetirementAge       string
	CurrentSavings      string
	MonthlyContribution string
	AnnualReturn        string
	InflationRate       string
	DesiredIncome       string
	LifeExpectancy      string
}

var defaultProjectionForm = projectionForm{
	CurrentAge:          "30",
	RetirementAge:       "65",
	CurrentSavings:      "50000",
	MonthlyContribution: "500",
	AnnualReturn:        "7",
	InflationRate:       "3",
	DesiredIncome:       "60000",
	LifeExpectancy:      "90",
}

type projectionPage struct {
	InflationEnabled bool
	Form             projectionForm
	Result           *domain.ProjectionResult
	Error            string
}

// Index handles GET /. The inflation field is shown only while the flag is on.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "projection.html.tmpl", projectionPage{
		InflationEnabled: h.svc.InflationEnabled(r.Context()),
		Form:             defaultProjectionForm,
	})
}

// SubmitProjection handles POST /.
func (h *Handler) SubmitProjection(w http.ResponseWriter, r *http.Request) {
	page := projectionPage{InflationEnabled: h.svc.InflationEnabled(r.Context())}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		page.Form = defaultProjectionForm
		page.Error = "could not read form: " + err.Error()
		h.render(w, r, http.StatusBadRequest, "projection.html.tmpl", page)
		return
	}

	page.Form = projectionForm{
		CurrentAge:          r.PostForm.Get("current_age"),
		RetirementAge:       r.PostForm.Get("retirement_age"),
		CurrentSavings:      r.PostForm.Get("current_savings"),
		MonthlyContribution: r.PostForm.Get("monthly_contribution"),
		AnnualReturn:        r.PostForm.Get("annual_return"),
		InflationRate:       r.PostForm.Get("inflation_rate"),
		DesiredIncome:       r.PostForm.Get("desired_income"),
		LifeExpectancy:      r.PostForm.Get("life_expectancy"),
	}

	req, err := page.Form.request()
	if err == nil {
		var res domain.ProjectionResult
		if res, err = h.svc.Project(r.Context(), req); err == nil {
			page.Result = &res
			h.render(w, r, http.StatusOK, "projection.html.tmpl", page)
			return
		}
	}

	status := http.StatusBadRequest
	if !domain.IsInvalidInput(err) {
		entry(h.log, r).WithError(err).Error("projection failed")
		status = http.StatusInternalServerError
		err = errInternal
	}
	page.Error = err.Error()
	h.render(w, r, status, "projection.html.tmpl", page)
}

func (f projectionForm) request() (domain.ProjectionRequest, error) {
	var req domain.ProjectionRequest
	fields := []struct {
		name  string
		value string
		dst   **decimal.Decimal
	}{
		{"current_age", f.CurrentAge, &req.CurrentAge},
		{"retirement_age", f.RetirementAge, &req.RetirementAge},
		{"current_savings", f.CurrentSavings, &req.CurrentSavings},
		{"monthly_contribution", f.MonthlyContribution, &req.MonthlyContribution},
		{"annual_return", f.AnnualReturn, &req.AnnualReturn},
		{"inflation_rate", f.InflationRate, &req.InflationRate},
		{"desired_income", f.DesiredIncome, &req.DesiredIncome},
		{"life_expectancy", f.LifeExpectancy, &req.LifeExpectancy},
	}
	for _, fl := range fields {
		v, err := parseNumber(fl.name, fl.value)
		if err != nil {
			return domain.ProjectionRequest{}, err
		}
		*fl.dst = v
	}
	return req, nil
}

// parseNumber accepts "1,250.50", "$1,250.50" and "7%". An empty value is nil.
func parseNumber(field, value string) (*decimal.Decimal, error) {
	value = strings.TrimSuffix(strings.TrimSpace(value), "%")
	if value == "" {
		return nil, nil
	}
	m, err := money.Parse(value)
	if err != nil {
		return nil, domain.InvalidField(field, "must be a number, got %q", value)
	}
	return &m.Decimal, nil
}

type annualSavingsForm struct {
	AnnualSavings      string
	InterestRate       string
	Years              string
	InflationRate      string
	AdjustForInflation bool
}

type annualSavingsPage struct {
	InflationEnabled bool
	Form             annualSavingsForm
	Result           *domain.AnnualSavingsResult
	Error            string
}

var defaultAnnualSavingsForm = annualSavingsForm{
	AnnualSavings:      "10000",
	InterestRate:       "5",
	Years:              "30",
	InflationRate:      "2",
	AdjustForInflation: true,
}

// AnnualSavingsForm handles GET /annual-savings.
func (h *Handler) AnnualSavingsForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "annual_savings.html.tmpl", annualSavingsPage{
		InflationEnabled: h.svc.InflationEnabled(r.Context()),
		Form:             defaultAnnualSavingsForm,
	})
}

// SubmitAnnualSavings handles POST /annual-savings.
func (h *Handler) SubmitAnnualSavings(w http.ResponseWriter, r *http.Request) {
	page := annualSavingsPage{InflationEnabled: h.svc.InflationEnabled(r.Context())}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		page.Form = defaultAnnualSavingsForm
		page.Error = "could not read form: " + err.Error()
		h.render(w, r, http.StatusBadRequest, "annual_savings.html.tmpl", page)
		return
	}

	page.Form = annualSavingsForm{
		AnnualSavings:      r.PostForm.Get("annual_savings"),
		InterestRate:       r.PostForm.Get("interest_rate"),
		Years:              r.PostForm.Get("years"),
		InflationRate:      r.PostForm.Get("inflation_rate"),
		AdjustForInflation: r.PostForm.Get("adjust_for_inflation") != "",
	}

	in, err := page.Form.input()
	if err == nil {
		var res domain.AnnualSavingsResult
		if res, err = h.svc.AnnualSavings(r.Context(), in); err == nil {
			page.Result = &res
			h.render(w, r, http.StatusOK, "annual_savings.html.tmpl", page)
			return
		}
	}

	status := http.StatusBadRequest
	if !domain.IsInvalidInput(err) {
		entry(h.log, r).WithError(err).Error("annual savings projection failed")
		status = http.StatusInternalServerError
		err = errInternal
	}
	page.Error = err.Error()
	h.render(w, r, status, "annual_savings.html.tmpl", page)
}

func (f annualSavingsForm) input() (domain.AnnualSavingsInput, error) {
	in := domain.AnnualSavingsInput{InflationAdjustmentEnabled: f.AdjustForInflation}

	deposit, err := parseNumber("annual_savings", f.AnnualSavings)
	if err != nil {
		return in, err
	}
	if deposit == nil {
		return in, domain.InvalidField("annual_savings", "is required")
	}
	in.AnnualDeposit = *deposit

	rate, err := parseNumber("interest_rate", f.InterestRate)
	if err != nil {
		return in, err
	}
	if rate == nil {
		return in, domain.InvalidField("interest_rate", "is required")
	}
	in.AnnualReturnRate = money.FromPercent(*rate)

	if in.Years, err = strconv.Atoi(strings.TrimSpace(f.Years)); err != nil {
		return in, domain.InvalidField("years", "must be a whole number, got %q", f.Years)
	}

	if f.AdjustForInflation {
		inflation, err := parseNumber("inflation_rate", f.InflationRate)
		if err != nil {
			return in, err
		}
		if inflation != nil {
			in.AnnualInflationRate = money.FromPercent(*inflation)
		}
	}
	return in, nil
}

var errInternal = errors.New("something went wrong, please try again")

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		entry(h.log, r).WithError(err).Error("template rendering failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
