package ingest

import (
	"context"
	"strings"

	"github.com/mwhitfield/distress-engine/internal/logger"
	"github.com/mwhitfield/distress-engine/internal/models"
	"github.com/mwhitfield/distress-engine/internal/normalize"
	"github.com/mwhitfield/distress-engine/internal/repository"
)

// MasterResult reports one master-roll load.
type MasterResult struct {
	Loaded int `json:"loaded"`
	Failed int `json:"failed"`
}

// MasterLoader ingests the county assessor's master roll: the property,
// owner, and financial hub rows everything else resolves against. Rows are
// keyed by parcel ID and upserted, so re-running a roll refreshes in place.
type MasterLoader struct {
	props repository.PropertyRepository
	norm  *normalize.Normalizer
	log   *logger.Logger
}

// NewMasterLoader wires a MasterLoader.
func NewMasterLoader(props repository.PropertyRepository, norm *normalize.Normalizer, log *logger.Logger) *MasterLoader {
	return &MasterLoader{
		props: props,
		norm:  norm,
		log:   log,
	}
}

// LoadProperties upserts property, owner, and financial rows from the
// master roll. A row without a parcel ID, or a row that fails to persist,
// is logged and counted; the run continues.
func (m *MasterLoader) LoadProperties(ctx context.Context, rows []models.Row) (MasterResult, error) {
	log := m.log.WithPipeline("master")
	log.Info("master roll load started", map[string]interface{}{
		"rows": len(rows),
	})

	var result MasterResult
	for _, row := range rows {
		parcelID := row.GetAny("FOLIO", "Parcel ID")
		if parcelID == "" {
			result.Failed++
			log.Warn("row rejected", map[string]interface{}{
				"reason": "missing parcel id",
			})
			continue
		}

		if err := m.loadRow(ctx, parcelID, row); err != nil {
			result.Failed++
			log.Error("failed to load parcel", err, map[string]interface{}{
				"parcel_id": parcelID,
			})
			continue
		}
		result.Loaded++
	}

	log.Info("master roll load complete", map[string]interface{}{
		"loaded": result.Loaded,
		"failed": result.Failed,
	})
	return result, nil
}

func (m *MasterLoader) loadRow(ctx context.Context, parcelID string, row models.Row) error {
	address := row.Get("SITE_ADDR")
	normalized := m.norm.Address(address)

	yearBuilt, err := parseInt(row.Get("YR_BUILT"))
	if err != nil {
		return err
	}
	sqft, err := parseAmount(row.Get("HEAT_AR"))
	if err != nil {
		return err
	}
	beds, err := parseAmount(row.Get("tBEDS"))
	if err != nil {
		return err
	}
	baths, err := parseAmount(row.Get("tBATHS"))
	if err != nil {
		return err
	}
	lotSize, err := parseAmount(row.Get("ACREAGE"))
	if err != nil {
		return err
	}

	prop := &models.Property{
		ParcelID:          parcelID,
		Address:           optStr(address),
		NormalizedAddress: optStr(normalized),
		City:              optStr(row.Get("SITE_CITY")),
		State:             optStr(row.GetAny("SITE_STATE", "STATE_CD")),
		Zip:               optStr(row.Get("SITE_ZIP")),
		County:            optStr(row.Get("COUNTY")),
		PropertyType:      optStr(row.Get("TYPE")),
		YearBuilt:         yearBuilt,
		SquareFootage:     sqft,
		Beds:              beds,
		Baths:             baths,
		LotSize:           lotSize,
		LegalDescription:  optStr(legalDescription(row)),
	}

	propertyID, err := m.props.UpsertProperty(ctx, prop)
	if err != nil {
		return err
	}

	ownerName := row.Get("OWNER")
	owner := &models.Owner{
		PropertyID:     propertyID,
		OwnerName:      optStr(ownerName),
		NormalizedName: optStr(m.norm.OwnerName(ownerName)),
		MailingAddress: optStr(row.Get("ADDR_1")),
		MailingCity:    optStr(row.Get("CITY")),
		MailingState:   optStr(row.Get("STATE")),
		MailingZip:     optStr(row.Get("ZIP")),
		AbsenteeStatus: deriveAbsenteeStatus(prop, row),
	}
	if err := m.props.UpsertOwner(ctx, owner); err != nil {
		return err
	}

	assessed, err := parseAmount(row.Get("ASD_VAL"))
	if err != nil {
		return err
	}
	taxVal, err := parseAmount(row.Get("TAX_VAL"))
	if err != nil {
		return err
	}
	land, err := parseAmount(row.Get("LAND"))
	if err != nil {
		return err
	}
	building, err := parseAmount(row.Get("BLDG"))
	if err != nil {
		return err
	}

	financial := &models.Financial{
		PropertyID:       propertyID,
		AssessedValueMkt: assessed,
		AssessedValueTax: taxVal,
		LandValue:        land,
		BuildingValue:    building,
	}
	return m.props.UpsertFinancial(ctx, financial)
}

func legalDescription(row models.Row) string {
	parts := []string{}
	for _, col := range []string{"LEGAL1", "LEGAL2", "LEGAL3", "LEGAL4"} {
		if v := row.Get(col); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

// deriveAbsenteeStatus classifies an owner by comparing the mailing address
// to the site address. Nil means undeterminable; the scoring engine applies
// its own explicit default in that case.
func deriveAbsenteeStatus(prop *models.Property, row models.Row) *string {
	mailAddr := row.Get("ADDR_1")
	mailCity := row.Get("CITY")
	mailState := row.Get("STATE")

	siteAddr := ""
	if prop.Address != nil {
		siteAddr = *prop.Address
	}
	siteCity := ""
	if prop.City != nil {
		siteCity = *prop.City
	}
	siteState := "FL"
	if prop.State != nil {
		siteState = *prop.State
	}

	if mailAddr != "" && siteAddr != "" && strings.EqualFold(mailAddr, siteAddr) {
		s := models.AbsenteeInCounty
		return &s
	}
	if mailState != "" {
		if !strings.EqualFold(mailState, siteState) {
			s := models.AbsenteeOutOfState
			return &s
		}
		if mailCity != "" && siteCity != "" {
			if strings.EqualFold(mailCity, siteCity) {
				s := models.AbsenteeInCounty
				return &s
			}
			s := models.AbsenteeOutOfCounty
			return &s
		}
	}
	return nil
}
