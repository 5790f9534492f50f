package orderform

import (
	"fmt"
	"math"
	"strings"

	"copyprocloud/internal/domain"
)

// Form holds the state of the multi-step order form. All calculations are
// pure: the calculator performs no I/O and cannot fail.
type Form struct {
	Name           string
	Email          string
	Phone          string
	ServiceSlug    string
	Details        string
	AdditionalInfo string
	Deadline       domain.DeadlineType
	Addons         []string
}

// ServiceInfo is the slice of the catalog the calculator needs. Prices
// here are in rubles (major units); the submission pipeline converts the
// estimate to kopecks.
type ServiceInfo struct {
	Slug            string
	Name            string
	MinPrice        int64
	MinDeliveryDays int
	MaxDeliveryDays int
}

const (
	// FallbackPrice is used when no or an unknown service is selected.
	FallbackPrice = 5000

	lastStep = 5
)

// Fixed surcharge per selected add-on, rubles. Unknown add-on ids
// contribute zero.
var addonSurcharges = map[string]int64{
	"seo-optimization":  2000,
	"urgency":           3000,
	"multiple-variants": 1500,
	"consultation":      1000,
	"localization":      2500,
}

// Progress reports which form steps are complete and where the user is.
type Progress struct {
	CompletedSteps []int `json:"completed_steps"`
	CurrentStep    int   `json:"current_step"`
	Percent        int   `json:"percent"`
}

// CompletedSteps checks the four required step groups and advances the
// current-step pointer to one past the highest contiguous completed step,
// capped at the final step.
func (f *Form) CompletedSteps() Progress {
	done := map[int]bool{
		1: strings.TrimSpace(f.Name) != "" && strings.TrimSpace(f.Email) != "",
		2: strings.TrimSpace(f.ServiceSlug) != "",
		3: strings.TrimSpace(f.Details) != "",
		4: f.Deadline != "",
	}

	completed := make([]int, 0, 4)
	for step := 1; step <= 4; step++ {
		if done[step] {
			completed = append(completed, step)
		}
	}

	current := 1
	for step := 1; step <= 4; step++ {
		if !done[step] {
			break
		}
		current = step + 1
	}
	if current > lastStep {
		current = lastStep
	}

	return Progress{
		CompletedSteps: completed,
		CurrentStep:    current,
		Percent:        len(completed) * 100 / 4,
	}
}

// EstimatedPrice computes the price in rubles: the service's list minimum
// times the deadline multiplier (rounded to the nearest ruble), plus a
// fixed surcharge per selected add-on, never below the list minimum.
// svc may be nil for an unknown or unselected service.
func (f *Form) EstimatedPrice(svc *ServiceInfo) int64 {
	base := int64(FallbackPrice)
	floor := int64(FallbackPrice)
	if svc != nil {
		base = svc.MinPrice
		floor = svc.MinPrice
	}

	price := int64(math.Round(float64(base) * deadlineMultiplier(f.Deadline)))
	for _, id := range f.Addons {
		price += addonSurcharges[id]
	}

	if price < floor {
		price = floor
	}
	return price
}

func deadlineMultiplier(d domain.DeadlineType) float64 {
	switch d {
	case domain.DeadlineUrgent:
		return 1.5
	case domain.DeadlineExpress:
		return 2.0
	default:
		return 1.0
	}
}

// DeliveryEstimate is a [min,max] window in days.
type DeliveryEstimate struct {
	MinDays int `json:"min_days"`
	MaxDays int `json:"max_days"`
}

func (d DeliveryEstimate) String() string {
	if d.MinDays == d.MaxDays {
		if d.MinDays == 1 {
			return "1 день"
		}
		return fmt.Sprintf("%d дней", d.MinDays)
	}
	return fmt.Sprintf("%d-%d дней", d.MinDays, d.MaxDays)
}

// EstimatedDeliveryTime reads the service's delivery window. Urgent
// halves both bounds (rounding up, floored at 1 and 2 days); express
// collapses the window to a single day. Unknown services fall back to a
// 3-5 day window.
func (f *Form) EstimatedDeliveryTime(svc *ServiceInfo) DeliveryEstimate {
	min, max := 3, 5
	if svc != nil {
		min, max = svc.MinDeliveryDays, svc.MaxDeliveryDays
	}

	switch f.Deadline {
	case domain.DeadlineExpress:
		return DeliveryEstimate{MinDays: 1, MaxDays: 1}
	case domain.DeadlineUrgent:
		min = (min + 1) / 2
		max = (max + 1) / 2
		if min < 1 {
			min = 1
		}
		if max < 2 {
			max = 2
		}
		return DeliveryEstimate{MinDays: min, MaxDays: max}
	default:
		return DeliveryEstimate{MinDays: min, MaxDays: max}
	}
}
