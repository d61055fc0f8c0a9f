package domain

import (
	"context"
	"time"
)

const (
	ServiceExam    = "EXAM"
	ServiceLab     = "LAB"
	ServiceImaging = "IMAGING"
	ServiceOther   = "OTHER"
)

type MedicalService struct {
	ID       int64  `json:"id"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	Category string `json:"category"`
	// Price in Colombian pesos
	Price     int64     `json:"price"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type MedicalServiceInput struct {
	Code     string `json:"code" binding:"required,min=2,max=30"`
	Name     string `json:"name" binding:"required,min=2,max=150,no_emoji"`
	Category string `json:"category" binding:"required,oneof=EXAM LAB IMAGING OTHER"`
	Price    int64  `json:"price" binding:"min=0"`
	Active   *bool  `json:"active"`
}

type MedicalServiceFilter struct {
	PageRequest
	Category string `form:"category"`
	Active   *bool  `form:"active"`
	Search   string `form:"search"`
}

type MedicalServiceRepository interface {
	Create(ctx context.Context, s *MedicalService) error
	GetByID(ctx context.Context, id int64) (*MedicalService, error)
	GetByIDs(ctx context.Context, ids []int64) ([]MedicalService, error)
	List(ctx context.Context, f MedicalServiceFilter) ([]MedicalService, int64, error)
	Update(ctx context.Context, s *MedicalService) error
	SetActive(ctx context.Context, id int64, active bool) error
}

type MedicalServiceUsecase interface {
	Create(ctx context.Context, in MedicalServiceInput) (*MedicalService, error)
	Get(ctx context.Context, id int64) (*MedicalService, error)
	List(ctx context.Context, f MedicalServiceFilter) ([]MedicalService, int64, error)
	Update(ctx context.Context, id int64, in MedicalServiceInput) (*MedicalService, error)
	SetActive(ctx context.Context, id int64, active bool) (*MedicalService, error)
}
