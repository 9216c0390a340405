package recategorization

import (
	"estudio/internal/validation"
)

// ValidateMetrics rejects malformed client metrics before classification.
func ValidateMetrics(m ClientMetrics) error {
	v := validation.New()

	v.Check(m.Activity.Valid(), "activity", "must be one of goods, services, leasing, dual_leasing")
	v.Required("province", m.Province)
	v.MaxLength("province", m.Province, validation.MaxProvinceLength)
	v.NonNegativeInt("dependents", m.Dependents)
	v.NonNegativeInt("units_sold", m.UnitsSold)
	v.NonNegative("sales", m.Sales)
	v.NonNegative("purchases", m.Purchases)
	v.NonNegative("area", m.Area)
	v.NonNegative("rent", m.Rent)
	v.NonNegative("power", m.Power)
	v.Check(!m.PremisesRented || m.HasPremises, "premises_rented", "requires has_premises")
	if m.PreviousFee.Valid {
		v.NonNegative("previous_fee", m.PreviousFee.Decimal)
	}

	if v.Valid() {
		return nil
	}
	return &InputError{ClientID: m.ClientID, Fields: v.Errors}
}
