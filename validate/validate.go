// Package validate checks create/update/delete payloads before any storage
// work happens. Each entry point runs a structural pass (required fields,
// length bounds, formats, enumerations) and a business pass over date pairs,
// collecting every violation instead of failing on the first.
//
// Error strings are user-facing and follow the wire contract's language.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/c360/workplan/resource"
)

var (
	identifierRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	dateRe       = regexp.MustCompile(`^\d{2}-\d{2}-\d{4}$`)
	periodRe     = regexp.MustCompile(`^\d{4}-\d{2}$`)
	emailRe      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Field length bounds.
const (
	minAccountIDLen   = 8
	minClientNameLen  = 3
	maxClientNameLen  = 200
	minProjectTypeLen = 2
	maxProjectTypeLen = 100
	maxCommitmentLen  = 500
	minSDMLen         = 3
	maxSDMLen         = 200
)

// Validator validates payloads. MinYear and Now bound the accepted date
// range; zero values fall back to the defaults set by New.
type Validator struct {
	// MinYear is the oldest year accepted in any date field.
	MinYear int
	// Now supplies the reference time for the future-year bound.
	Now func() time.Time
}

// New returns a Validator with the production date bounds.
func New() *Validator {
	return &Validator{MinYear: 2024, Now: time.Now}
}

// ClientInput validates a client create payload, including any embedded
// workloads. Embedded workload violations carry a "workload[N] - " position
// prefix, 1-based.
func (v *Validator) ClientInput(in resource.ClientInput) []string {
	var errs []string
	errs = appendIdentifier(errs, "id_cuenta", in.AccountID, minAccountIDLen)
	errs = appendBounded(errs, "cliente", in.Name, minClientNameLen, maxClientNameLen)
	errs = appendBounded(errs, "tipo_proyecto", in.ProjectType, minProjectTypeLen, maxProjectTypeLen)
	if len(in.Commitment) > maxCommitmentLen {
		errs = append(errs, tooLong("compromiso", maxCommitmentLen))
	}

	for i, w := range in.Workloads {
		ctx := fmt.Sprintf("workload[%d] - ", i+1)
		errs = append(errs, v.workloadFields(w, ctx, false)...)
		errs = append(errs, v.datePairIfWellFormed(w.StartDate, w.EndDate, ctx)...)
	}
	return errs
}

// WorkloadInput validates a standalone workload create payload, where
// id_cliente is mandatory.
func (v *Validator) WorkloadInput(in resource.WorkloadInput) []string {
	var errs []string
	errs = appendIdentifier(errs, "id_cliente", in.ClientID, minAccountIDLen)
	errs = append(errs, v.workloadFields(in, "", false)...)
	errs = append(errs, v.datePairIfWellFormed(in.StartDate, in.EndDate, "")...)
	return errs
}

// datePairIfWellFormed runs the business pass only when both dates already
// passed the structural pattern check; the field-level errors cover the rest.
func (v *Validator) datePairIfWellFormed(start, end, context string) []string {
	if !dateRe.MatchString(start) || !dateRe.MatchString(end) {
		return nil
	}
	return v.DatePair(start, end, context)
}

// ClientUpdate validates a client update payload. Unlike creates, every
// editable field is required because updates replace the whole editable set.
func (v *Validator) ClientUpdate(in resource.ClientUpdate) []string {
	var errs []string
	errs = appendIdentifier(errs, "id_cuenta", in.AccountID, minAccountIDLen)
	errs = appendBounded(errs, "cliente", in.Name, minClientNameLen, maxClientNameLen)
	errs = appendBounded(errs, "tipo_proyecto", in.ProjectType, minProjectTypeLen, maxProjectTypeLen)
	errs = appendBounded(errs, "compromiso", in.Commitment, 1, maxCommitmentLen)
	return errs
}

// WorkloadUpdate validates a workload update payload. The periodo field
// locates the current document; the date fields describe the new state.
func (v *Validator) WorkloadUpdate(in resource.WorkloadUpdate) []string {
	var errs []string
	errs = appendIdentifier(errs, "id", in.ID, minAccountIDLen)
	errs = appendIdentifier(errs, "id_cliente", in.ClientID, minAccountIDLen)
	switch {
	case in.Period == "":
		errs = append(errs, required("periodo"))
	case !periodRe.MatchString(in.Period):
		errs = append(errs, badFormat("periodo"))
	}
	errs = append(errs, v.workloadFields(resource.WorkloadInput{
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		SDM:       in.SDM,
		Status:    in.Status,
		Owner:     in.Owner,
	}, "", true)...)
	errs = append(errs, v.datePairIfWellFormed(in.StartDate, in.EndDate, "")...)
	return errs
}

// DeleteRequest validates a delete payload. Workload deletes need full
// partition coordinates; client deletes only the account id.
func (v *Validator) DeleteRequest(in resource.DeleteRequest) []string {
	var errs []string
	switch in.Type {
	case resource.DeleteTypeClient:
		errs = appendIdentifier(errs, "id", in.ID, minAccountIDLen)
	case resource.DeleteTypeWorkload:
		errs = appendIdentifier(errs, "id", in.ID, 1)
		errs = appendIdentifier(errs, "id_cliente", in.ClientID, minAccountIDLen)
		if in.Year == "" {
			errs = append(errs, required("year"))
		}
		if in.Month == "" {
			errs = append(errs, required("month"))
		}
	case "":
		errs = append(errs, required("tipo"))
	default:
		errs = append(errs, fmt.Sprintf("tipo: debe ser uno de [%s, %s]",
			resource.DeleteTypeClient, resource.DeleteTypeWorkload))
	}
	return errs
}

// workloadFields runs the structural checks shared by every workload shape.
// maxSDM is only enforced on updates, mirroring the stricter update schema.
func (v *Validator) workloadFields(w resource.WorkloadInput, ctx string, strictSDM bool) []string {
	var errs []string

	for _, f := range []struct{ name, value string }{
		{"fecha_inicio", w.StartDate},
		{"fecha_fin", w.EndDate},
	} {
		switch {
		case f.value == "":
			errs = append(errs, ctx+required(f.name))
		case !dateRe.MatchString(f.value):
			errs = append(errs, ctx+badFormat(f.name))
		}
	}

	switch {
	case w.SDM == "":
		errs = append(errs, ctx+required("sdm"))
	case len(w.SDM) < minSDMLen:
		errs = append(errs, ctx+tooShort("sdm", minSDMLen))
	case strictSDM && len(w.SDM) > maxSDMLen:
		errs = append(errs, ctx+tooLong("sdm", maxSDMLen))
	}

	switch {
	case w.Status == "":
		errs = append(errs, ctx+required("status"))
	case !resource.ValidWorkloadStatus(w.Status):
		errs = append(errs, ctx+statusEnum())
	}

	switch {
	case w.Owner == "":
		errs = append(errs, ctx+required("responsable_email"))
	case !emailRe.MatchString(w.Owner):
		errs = append(errs, ctx+"responsable_email: debe tener un formato de correo electrónico válido")
	}

	return errs
}

func appendIdentifier(errs []string, field, value string, minLen int) []string {
	switch {
	case value == "":
		return append(errs, required(field))
	case len(value) < minLen:
		return append(errs, tooShort(field, minLen))
	case !identifierRe.MatchString(value):
		return append(errs, badFormat(field))
	}
	return errs
}

func appendBounded(errs []string, field, value string, minLen, maxLen int) []string {
	switch {
	case value == "":
		return append(errs, required(field))
	case len(value) < minLen:
		return append(errs, tooShort(field, minLen))
	case len(value) > maxLen:
		return append(errs, tooLong(field, maxLen))
	}
	return errs
}

func required(field string) string {
	return field + ": campo requerido"
}

func tooShort(field string, n int) string {
	return fmt.Sprintf("%s: debe tener al menos %d caracteres", field, n)
}

func tooLong(field string, n int) string {
	return fmt.Sprintf("%s: no debe exceder %d caracteres", field, n)
}

func badFormat(field string) string {
	return field + ": formato inválido"
}

func statusEnum() string {
	names := make([]string, len(resource.WorkloadStatuses))
	for i, s := range resource.WorkloadStatuses {
		names[i] = string(s)
	}
	return fmt.Sprintf("status: debe ser uno de [%s]", strings.Join(names, ", "))
}
