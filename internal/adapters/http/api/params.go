package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/runeset/elotrace/internal/domain/model"
)

// validate is shared; validator instances cache struct metadata.
var validate = validator.New() //nolint:gochecknoglobals

// seriesParams is the wire shape of every series-family endpoint's
// query string, before it becomes a model.Query.
type seriesParams struct {
	Team     string  `validate:"required,max=120"`
	Compare  string  `validate:"max=500"`
	From     string  `validate:"omitempty,datetime=2006-01-02"`
	To       string  `validate:"omitempty,datetime=2006-01-02"`
	Window   int     `validate:"min=0"`
	Delta    bool
	Scale    bool
	ScaleMin float64 `validate:"min=0"`
	ScaleMax float64 `validate:"min=0"`
	Source   string  `validate:"omitempty,oneof=club national"`
	YearFrom int     `validate:"omitempty,min=1800,max=2100"`
	YearTo   int     `validate:"omitempty,min=1800,max=2100"`
}

// FieldError names one rejected parameter.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// parseSeriesQuery extracts, validates and converts the query string.
func (s *Server) parseSeriesQuery(r *http.Request) (model.Query, []FieldError) {
	q := r.URL.Query()
	var fields []FieldError

	intParam := func(name string) int {
		raw := strings.TrimSpace(q.Get(name))
		if raw == "" {
			return 0
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			fields = append(fields, FieldError{Field: name, Message: "must be an integer"})
			return 0
		}
		return v
	}
	boolParam := func(name string) bool {
		raw := strings.TrimSpace(q.Get(name))
		if raw == "" {
			return false
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			fields = append(fields, FieldError{Field: name, Message: "must be a boolean"})
			return false
		}
		return v
	}
	floatParam := func(name string) float64 {
		raw := strings.TrimSpace(q.Get(name))
		if raw == "" {
			return 0
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			fields = append(fields, FieldError{Field: name, Message: "must be a number"})
			return 0
		}
		return v
	}

	p := seriesParams{
		Team:     strings.TrimSpace(q.Get("team")),
		Compare:  q.Get("compare"),
		From:     strings.TrimSpace(q.Get("from")),
		To:       strings.TrimSpace(q.Get("to")),
		Window:   intParam("window"),
		Delta:    boolParam("delta"),
		Scale:    boolParam("scale"),
		ScaleMin: floatParam("scale_min"),
		ScaleMax: floatParam("scale_max"),
		Source:   strings.TrimSpace(q.Get("source")),
		YearFrom: intParam("year_from"),
		YearTo:   intParam("year_to"),
	}
	if len(fields) > 0 {
		return model.Query{}, fields
	}

	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if ok := asValidationErrors(err, &verrs); ok {
			for _, ve := range verrs {
				fields = append(fields, FieldError{
					Field:   paramName(ve.Field()),
					Message: validationMessage(ve),
				})
			}
			return model.Query{}, fields
		}
		return model.Query{}, []FieldError{{Field: "query", Message: err.Error()}}
	}

	// Cross-field checks validator tags cannot express.
	if p.Window > s.maxWindow {
		fields = append(fields, FieldError{
			Field:   "window",
			Message: fmt.Sprintf("must be at most %d", s.maxWindow),
		})
	}
	if p.Scale && !p.Delta {
		if p.ScaleMin <= 0 || p.ScaleMax <= 0 {
			fields = append(fields, FieldError{Field: "scale_min", Message: "log scale bounds must be positive"})
		} else if p.ScaleMin >= p.ScaleMax {
			fields = append(fields, FieldError{Field: "scale_max", Message: "must be greater than scale_min"})
		}
	}
	if p.YearFrom != 0 && p.YearTo != 0 && p.YearFrom > p.YearTo {
		fields = append(fields, FieldError{Field: "year_to", Message: "must not precede year_from"})
	}
	if len(fields) > 0 {
		return model.Query{}, fields
	}

	out := model.Query{
		Entity:      p.Team,
		Window:      p.Window,
		Delta:       p.Delta,
		CustomScale: p.Scale,
		ScaleMin:    p.ScaleMin,
		ScaleMax:    p.ScaleMax,
		Source:      model.SourceKind(p.Source),
		Years:       model.YearRange{From: p.YearFrom, To: p.YearTo},
	}
	if out.Source == "" {
		out.Source = model.SourceClub
	}
	if p.Compare != "" {
		out.Compare = strings.Split(p.Compare, ",")
	}
	if p.From != "" {
		out.From, _ = model.ParseDate(p.From) // format already validated
	}
	if p.To != "" {
		out.To, _ = model.ParseDate(p.To)
	}
	return out.Normalize(s.maxCompare, s.maxWindow), nil
}

// paramName maps struct field names back to their query parameter names.
func paramName(field string) string {
	switch field {
	case "Team":
		return "team"
	case "Compare":
		return "compare"
	case "From":
		return "from"
	case "To":
		return "to"
	case "Window":
		return "window"
	case "Delta":
		return "delta"
	case "Scale":
		return "scale"
	case "ScaleMin":
		return "scale_min"
	case "ScaleMax":
		return "scale_max"
	case "Source":
		return "source"
	case "YearFrom":
		return "year_from"
	case "YearTo":
		return "year_to"
	default:
		return strings.ToLower(field)
	}
}

func validationMessage(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "is required"
	case "datetime":
		return "must be a YYYY-MM-DD date"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(ve.Param(), " ", ", "))
	case "min":
		return fmt.Sprintf("must be at least %s", ve.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", ve.Param())
	default:
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}
