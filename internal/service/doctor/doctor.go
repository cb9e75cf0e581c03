package doctor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/medibook/medibook_backend/internal/repo"
	"github.com/medibook/medibook_backend/internal/service/account"
	"github.com/medibook/medibook_backend/internal/service/user"
	"github.com/medibook/medibook_backend/pkg/authorize"
	"github.com/medibook/medibook_backend/pkg/util/password"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type CreateRequest struct {
	Name             string
	Email            string
	Password         string
	Phone            string
	Image            string
	SpecializationID string
	Description      string
	Price            int64
}

type UpdateRequest struct {
	Name             *string
	Phone            *string
	Image            *string
	SpecializationID *string
	Description      *string
	Price            *int64
}

type ListRequest struct {
	SpecializationID string
}

// View is a doctor with its account and specialization names.
type View struct {
	*repo.Doctor
	Name               string `json:"name"`
	Email              string `json:"email"`
	Phone              string `json:"phone,omitempty"`
	Image              string `json:"image,omitempty"`
	SpecializationName string `json:"specialization_name,omitempty"`
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*View, error)
	Get(ctx context.Context, id string) (*View, error)
	List(ctx context.Context, req ListRequest) ([]*View, error)
	Update(ctx context.Context, id string, req UpdateRequest) (*View, error)
	Delete(ctx context.Context, id string) error
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type doctorService struct {
	db     *repo.Client
	hasher *password.Hasher
	users  user.Service
}

func New(db *repo.Client, hasher *password.Hasher, users user.Service) Service {
	return &doctorService{db: db, hasher: hasher, users: users}
}

func (s *doctorService) load(ctx context.Context, id string) (*repo.Doctor, error) {
	d, err := s.db.Doctor.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrDoctorNotFound
		}
		return nil, fmt.Errorf("get doctor: %w", err)
	}
	return d, nil
}

func (s *doctorService) checkSpecialization(ctx context.Context, id string) error {
	if _, err := s.db.Specialization.Get(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrSpecializationNotFound
		}
		return fmt.Errorf("get specialization: %w", err)
	}
	return nil
}

func (s *doctorService) Create(ctx context.Context, req CreateRequest) (*View, error) {
	if req.Price < 0 {
		return nil, ErrInvalidPrice
	}
	if err := s.checkSpecialization(ctx, req.SpecializationID); err != nil {
		return nil, err
	}

	var d *repo.Doctor
	_, err := account.Create(ctx, s.db, s.hasher, account.Request{
		Name: req.Name, Email: req.Email, Password: req.Password, Phone: req.Phone, Image: req.Image,
	}, authorize.RoleDoctor, func(ctx context.Context, u *repo.User) error {
		now := time.Now().UTC()
		d = &repo.Doctor{
			ID:               repo.NewID(),
			UserID:           u.ID,
			SpecializationID: req.SpecializationID,
			Description:      strings.TrimSpace(req.Description),
			Price:            req.Price,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := s.db.Doctor.Create(ctx, d); err != nil {
			return fmt.Errorf("create doctor: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.one(ctx, d)
}

func (s *doctorService) Get(ctx context.Context, id string) (*View, error) {
	d, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.one(ctx, d)
}

func (s *doctorService) one(ctx context.Context, d *repo.Doctor) (*View, error) {
	vs, err := s.enrich(ctx, []*repo.Doctor{d})
	if err != nil {
		return nil, err
	}
	return vs[0], nil
}

func (s *doctorService) List(ctx context.Context, req ListRequest) ([]*View, error) {
	ds, err := s.db.Doctor.List(ctx, repo.DoctorFilter{SpecializationID: req.SpecializationID})
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	return s.enrich(ctx, ds)
}

// enrich reads users and specializations in one batch each.
func (s *doctorService) enrich(ctx context.Context, ds []*repo.Doctor) ([]*View, error) {
	userIDs := make([]string, 0, len(ds))
	specIDs := make([]string, 0, len(ds))
	for _, d := range ds {
		userIDs = append(userIDs, d.UserID)
		specIDs = append(specIDs, d.SpecializationID)
	}
	us, err := s.db.User.GetMany(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	sps, err := s.db.Specialization.GetMany(ctx, specIDs)
	if err != nil {
		return nil, fmt.Errorf("get specializations: %w", err)
	}
	users := make(map[string]*repo.User, len(us))
	for _, u := range us {
		users[u.ID] = u
	}
	specs := make(map[string]string, len(sps))
	for _, sp := range sps {
		specs[sp.ID] = sp.Name
	}

	out := make([]*View, 0, len(ds))
	for _, d := range ds {
		v := &View{Doctor: d, SpecializationName: specs[d.SpecializationID]}
		if u := users[d.UserID]; u != nil {
			v.Name, v.Email, v.Phone, v.Image = u.Name, u.Email, u.Phone, u.Image
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *doctorService) Update(ctx context.Context, id string, req UpdateRequest) (*View, error) {
	d, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.SpecializationID != nil && *req.SpecializationID != d.SpecializationID {
		if err := s.checkSpecialization(ctx, *req.SpecializationID); err != nil {
			return nil, err
		}
		d.SpecializationID = *req.SpecializationID
	}
	if req.Price != nil {
		if *req.Price < 0 {
			return nil, ErrInvalidPrice
		}
		d.Price = *req.Price
	}
	if req.Description != nil {
		d.Description = strings.TrimSpace(*req.Description)
	}

	if req.Name != nil || req.Phone != nil || req.Image != nil {
		if _, err := s.users.UpdateProfile(ctx, d.UserID, user.UpdateProfileRequest{Name: req.Name, Phone: req.Phone, Image: req.Image}); err != nil {
			return nil, err
		}
	}

	d.UpdatedAt = time.Now().UTC()
	if err := s.db.Doctor.Update(ctx, d); err != nil {
		return nil, fmt.Errorf("update doctor: %w", err)
	}
	return s.one(ctx, d)
}

// Delete removes the doctor, its schedules and its account. Appointments are
// kept for the record.
func (s *doctorService) Delete(ctx context.Context, id string) error {
	d, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	n, err := s.db.Schedule.DeleteByDoctor(ctx, d.ID)
	if err != nil {
		return fmt.Errorf("delete schedules: %w", err)
	}
	if err := s.db.Doctor.Delete(ctx, d.ID); err != nil {
		return fmt.Errorf("delete doctor: %w", err)
	}
	if err := account.Remove(ctx, s.db, d.UserID); err != nil {
		return err
	}
	slog.Info("doctor deleted", "doctor_id", d.ID, "schedules", n)
	return nil
}
