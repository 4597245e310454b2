package schedule

type RecurrenceType string

const (
	RecurrenceDaily      RecurrenceType = "daily"
	RecurrenceEveryXDays RecurrenceType = "every_x_days"
	RecurrenceWeekly     RecurrenceType = "weekly"
	RecurrenceBiWeekly   RecurrenceType = "bi_weekly"
	RecurrenceMonthly    RecurrenceType = "monthly"
	RecurrenceAsNeeded   RecurrenceType = "as_needed"
)

func (t RecurrenceType) Valid() bool {
	switch t {
	case RecurrenceDaily, RecurrenceEveryXDays, RecurrenceWeekly,
		RecurrenceBiWeekly, RecurrenceMonthly, RecurrenceAsNeeded:
		return true
	}
	return false
}

// FoodRelationship es metadata informativa; no participa del cálculo.
type FoodRelationship string

const (
	FoodDoesNotMatter FoodRelationship = "does_not_matter"
	FoodWith          FoodRelationship = "with_food"
	FoodWithout       FoodRelationship = "without_food"
	FoodBeforeMeal    FoodRelationship = "before_meal"
	FoodAfterMeal     FoodRelationship = "after_meal"
)

func (f FoodRelationship) Valid() bool {
	switch f {
	case FoodDoesNotMatter, FoodWith, FoodWithout, FoodBeforeMeal, FoodAfterMeal:
		return true
	}
	return false
}

type DoseStatusKind string

const (
	StatusGiven    DoseStatusKind = "given"
	StatusSkipped  DoseStatusKind = "skipped"
	StatusMissed   DoseStatusKind = "missed"
	StatusDueNow   DoseStatusKind = "due_now"
	StatusUpcoming DoseStatusKind = "upcoming"
)

// Lifecycle: una dosis nunca se borra, se discontinúa.
type Lifecycle string

const (
	LifecycleActive       Lifecycle = "active"
	LifecycleDiscontinued Lifecycle = "discontinued"
)

// DuplicatePolicy decide qué pasa si se registra dos veces la misma ocurrencia.
type DuplicatePolicy string

const (
	DuplicatesAllow  DuplicatePolicy = "allow"
	DuplicatesReject DuplicatePolicy = "reject"
)
