// Package people defines the person record and the rules that decide
// whether a submitted record may be stored.
package people

// Field names accepted at the boundary. Anything else is ignored.
const (
	FieldFirstName   = "first_name"
	FieldLastName    = "last_name"
	FieldDateOfBirth = "date_of_birth"
	FieldAddress     = "address"
	FieldZIP         = "zip"
)

// IndicatorFields lists the tri-state indicator names in column order.
var IndicatorFields = []string{
	"criminal_history",
	"addiction_history",
	"addiction_current",
	"disability",
	"mental_illness_history",
	"high_school_ed",
	"work_history",
	"higher_ed",
	"veteran",
	"dependents",
}

// Fields is every recognized field name, in column order.
var Fields = append([]string{
	FieldFirstName,
	FieldLastName,
	FieldDateOfBirth,
	FieldAddress,
	FieldZIP,
}, IndicatorFields...)

// Record is a normalized person that has not been stored yet.
// Optional text is nil when no value was given, never "".
type Record struct {
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	DateOfBirth *string `json:"date_of_birth"`
	Address     *string `json:"address"`
	ZIP         *string `json:"zip"`

	CriminalHistory      Tristate `json:"criminal_history"`
	AddictionHistory     Tristate `json:"addiction_history"`
	AddictionCurrent     Tristate `json:"addiction_current"`
	Disability           Tristate `json:"disability"`
	MentalIllnessHistory Tristate `json:"mental_illness_history"`
	HighSchoolEd         Tristate `json:"high_school_ed"`
	WorkHistory          Tristate `json:"work_history"`
	HigherEd             Tristate `json:"higher_ed"`
	Veteran              Tristate `json:"veteran"`
	Dependents           Tristate `json:"dependents"`
}

// Indicators returns pointers to the indicator fields in IndicatorFields order.
func (r *Record) Indicators() []*Tristate {
	return []*Tristate{
		&r.CriminalHistory,
		&r.AddictionHistory,
		&r.AddictionCurrent,
		&r.Disability,
		&r.MentalIllnessHistory,
		&r.HighSchoolEd,
		&r.WorkHistory,
		&r.HigherEd,
		&r.Veteran,
		&r.Dependents,
	}
}

// Person is a stored record. ID is assigned by the store.
type Person struct {
	ID int64 `json:"id"`
	Record
}
