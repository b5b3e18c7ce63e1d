//go:generate go run go.uber.org/mock/mockgen -source=organization.go -destination=../mocks/mock_organization_repository.go -package=mocks
package repositories

import (
	stderrors "errors"
	"fmt"

	"help-desk/domain"
	"help-desk/errors"

	"github.com/dgraph-io/badger/v4"
	"github.com/go-playground/validator/v10"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const organizationPrefix = "org:"

type OrganizationRepository interface {
	Save(organizationID string, school domain.SchoolContext) error
	Get(organizationID string) (domain.SchoolContext, error)
}

type organizationRepository struct {
	db       *badger.DB
	validate *validator.Validate
}

func NewOrganizationRepository(db *badger.DB) OrganizationRepository {
	return &organizationRepository{db: db, validate: validator.New()}
}

type organizationRecord struct {
	ID                 string `validate:"required,max=128"`
	Name               string `validate:"max=256"`
	Type               string `validate:"omitempty,oneof=maintained academy special independent"`
	Phase              string `validate:"max=64"`
	LocalAuthority     string `validate:"max=128"`
	TrustName          string `validate:"max=256"`
	PupilCount         int    `validate:"gte=0,lte=100000"`
	OldestBuildingYear int    `validate:"omitempty,gte=1000,lte=2100"`
}

// Save validates and replaces the facts known about an organization.
func (o *organizationRepository) Save(organizationID string, school domain.SchoolContext) error {
	record := organizationRecord{
		ID:                 organizationID,
		Name:               school.Name,
		Type:               school.Type,
		Phase:              school.Phase,
		LocalAuthority:     school.LocalAuthority,
		TrustName:          school.TrustName,
		PupilCount:         school.PupilCount,
		OldestBuildingYear: school.OldestBuildingYear,
	}
	if err := o.validate.Struct(record); err != nil {
		return fmt.Errorf("invalid organization %q: %w", organizationID, err)
	}

	s, err := structpb.NewStruct(map[string]any{
		"name":                 school.Name,
		"type":                 school.Type,
		"phase":                school.Phase,
		"local_authority":      school.LocalAuthority,
		"trust_name":           school.TrustName,
		"pupil_count":          float64(school.PupilCount),
		"oldest_building_year": float64(school.OldestBuildingYear),
	})
	if err != nil {
		return err
	}
	data, err := proto.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return o.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(organizationPrefix+organizationID), data)
	})
}

func (o *organizationRepository) Get(organizationID string) (domain.SchoolContext, error) {
	var s structpb.Struct
	err := o.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(organizationPrefix + organizationID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return proto.Unmarshal(val, &s)
		})
	})
	if stderrors.Is(err, badger.ErrKeyNotFound) {
		return domain.SchoolContext{}, fmt.Errorf("%w: %s", errors.ErrOrganizationNotFound, organizationID)
	}
	if err != nil {
		return domain.SchoolContext{}, err
	}

	f := s.GetFields()
	return domain.SchoolContext{
		Name:               f["name"].GetStringValue(),
		Type:               f["type"].GetStringValue(),
		Phase:              f["phase"].GetStringValue(),
		LocalAuthority:     f["local_authority"].GetStringValue(),
		TrustName:          f["trust_name"].GetStringValue(),
		PupilCount:         int(f["pupil_count"].GetNumberValue()),
		OldestBuildingYear: int(f["oldest_building_year"].GetNumberValue()),
	}, nil
}
