package specialization

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/medibook/medibook_backend/internal/repo"
)

var (
	ErrNotFound     = errors.New("specialization not found")
	ErrNameRequired = errors.New("specialization name is required")
	ErrNameTaken    = errors.New("a specialization with this name exists")
	ErrInvalidImage = errors.New("image must be an absolute http(s) URL")
	// ErrInUse guards deletion while doctors still reference the specialization.
	ErrInUse = errors.New("specialization still has doctors")
)

type Request struct {
	Name        string
	Description string
	Image       string
}

type Service interface {
	Create(ctx context.Context, req Request) (*repo.Specialization, error)
	Get(ctx context.Context, id string) (*repo.Specialization, error)
	List(ctx context.Context) ([]*repo.Specialization, error)
	Update(ctx context.Context, id string, req Request) (*repo.Specialization, error)
	Delete(ctx context.Context, id string) error
}

type specializationService struct {
	db *repo.Client
}

func New(db *repo.Client) Service {
	return &specializationService{db: db}
}

func (r Request) normalize() (Request, error) {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
	r.Image = strings.TrimSpace(r.Image)
	if r.Name == "" {
		return r, ErrNameRequired
	}
	if r.Image != "" {
		u, err := url.Parse(r.Image)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return r, ErrInvalidImage
		}
	}
	return r, nil
}

func (s *specializationService) Create(ctx context.Context, req Request) (*repo.Specialization, error) {
	req, err := req.normalize()
	if err != nil {
		return nil, err
	}
	sp := &repo.Specialization{ID: repo.NewID(), Name: req.Name, Description: req.Description, Image: req.Image}
	if err := s.db.Specialization.Create(ctx, sp); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrNameTaken
		}
		return nil, fmt.Errorf("create specialization: %w", err)
	}
	return sp, nil
}

func (s *specializationService) Get(ctx context.Context, id string) (*repo.Specialization, error) {
	sp, err := s.db.Specialization.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get specialization: %w", err)
	}
	return sp, nil
}

func (s *specializationService) List(ctx context.Context) ([]*repo.Specialization, error) {
	out, err := s.db.Specialization.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list specializations: %w", err)
	}
	return out, nil
}

func (s *specializationService) Update(ctx context.Context, id string, req Request) (*repo.Specialization, error) {
	sp, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	req, err = req.normalize()
	if err != nil {
		return nil, err
	}
	sp.Name, sp.Description, sp.Image = req.Name, req.Description, req.Image
	if err := s.db.Specialization.Update(ctx, sp); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrNameTaken
		}
		return nil, fmt.Errorf("update specialization: %w", err)
	}
	return sp, nil
}

func (s *specializationService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	n, err := s.db.Doctor.CountBySpecialization(ctx, id)
	if err != nil {
		return fmt.Errorf("count doctors: %w", err)
	}
	if n > 0 {
		return ErrInUse
	}
	if err := s.db.Specialization.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete specialization: %w", err)
	}
	return nil
}
