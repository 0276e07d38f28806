package runtime_test

import (
	"time"

	"github.com/aretw0/aggregate/pkg/caster"
	"github.com/aretw0/aggregate/pkg/domain"
	"github.com/aretw0/aggregate/pkg/rules"
)

type Email struct {
	ID    int
	Email string
	Type  int
}

type Address struct {
	ID         int
	Street     string
	City       string
	PostalCode string
	State      string
}

type Contact struct {
	ID            int
	FirstName     string
	LastName      string
	Rating        int
	AverageRating float64
	DateOfBirth   time.Time
	IsPrivate     bool
	CreatedAt     time.Time
	CompanyName   string

	BeforeBuildValue         string
	BeforeBuildChildrenValue string
	AfterBuildValue          string

	Emails  []*Email
	Address *Address
}

// contactScope is the builder context callbacks and processors run against.
type contactScope struct {
	trace []string
}

func (s *contactScope) DefaultCompanyName() string { return "John Doe Inc." }

func (s *contactScope) BeforeBuildCallback(c *Contact, in domain.InputMap) {
	s.trace = append(s.trace, "before:"+c.FirstName)
	c.BeforeBuildValue = "BEFORE"
}

func (s *contactScope) RequiredCondition(c *Contact, in domain.InputMap) bool {
	return true
}

func emailRules() *rules.RuleSet {
	return &rules.RuleSet{
		Name: "email",
		Fields: []rules.FieldSpec{
			{Name: "id", Caster: caster.Integer()},
			{Name: "email", Caster: caster.String(), Required: rules.Always()},
			{Name: "type", Caster: caster.Integer(), Required: rules.Always()},
		},
		New: func() any { return &Email{} },
	}
}

func addressRules() *rules.RuleSet {
	fields := []rules.FieldSpec{}
	for _, name := range []string{"street", "city", "postal_code", "state"} {
		fields = append(fields, rules.FieldSpec{Name: name, Caster: caster.String()})
	}
	return &rules.RuleSet{
		Name:   "address",
		Fields: fields,
		New:    func() any { return &Address{} },
	}
}

func contactRules(severity domain.Severity) *rules.RuleSet {
	return &rules.RuleSet{
		Name:     "contact",
		Severity: severity,
		Fields: []rules.FieldSpec{
			{Name: "first_name", Caster: caster.String()},
			{Name: "last_name", Caster: caster.String()},
			{Name: "rating", Caster: caster.Integer(), Process: func(scope, e any, in domain.InputMap) (any, error) {
				return in["rating"], nil
			}},
			{Name: "average_rating", Caster: caster.Float()},
			{Name: "date_of_birth", Caster: caster.Date()},
			{Name: "is_private", Caster: caster.Boolean()},
			{Name: "created_at", Caster: caster.Time()},
			{Name: "company_name", Caster: caster.String(), Process: func(scope, e any, in domain.InputMap) (any, error) {
				if s, ok := scope.(*contactScope); ok {
					return s.DefaultCompanyName(), nil
				}
				return nil, nil
			}},
		},
		Associations: []rules.AssociationSpec{
			{Name: "address", Cardinality: domain.One, Rules: addressRules(), Deletable: true},
			{
				Name:        "emails",
				Cardinality: domain.Many,
				Rules:       emailRules(),
				Deletable:   true,
				RejectIf:    rules.RejectByKey("reject"),
			},
		},
		Callbacks: map[domain.Phase][]rules.CallbackSpec{
			domain.PhaseBefore: {{Method: "BeforeBuildCallback"}},
			domain.PhaseBeforeChildren: {{Func: func(scope, e any, in domain.InputMap) error {
				e.(*Contact).BeforeBuildChildrenValue = "BEFORE BUILD CHILDREN"
				return nil
			}}},
			domain.PhaseAfter: {{Func: func(scope, e any, in domain.InputMap) error {
				e.(*Contact).AfterBuildValue = "AFTER"
				return nil
			}}},
		},
		New: func() any { return &Contact{} },
	}
}

func fullInput() map[string]any {
	return map[string]any{
		"first_name":     "John",
		"last_name":      "Doe",
		"rating":         10,
		"average_rating": "2.1",
		"date_of_birth":  "12/09/1965",
		"is_private":     true,
		"created_at":     "2013-09-30 08:58:28 +0400",
		"emails": []any{
			map[string]any{"email": "test@example.com", "type": 0},
			map[string]any{"email": "user@example.com", "type": 1},
		},
		"address": map[string]any{
			"street":      "Street",
			"city":        "City",
			"postal_code": "Code",
			"state":       "State",
		},
	}
}
