package usecase

import (
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/gestion-pro/internal/application/dto"
	"github.com/tu-usuario/gestion-pro/internal/domain"
	"github.com/tu-usuario/gestion-pro/internal/domain/entity"
	"github.com/tu-usuario/gestion-pro/internal/domain/repository"
)

// BranchUseCase casos de uso CRUD para sucursales. El motor de stock solo las
// usa como llave foránea; aquí vive el directorio que las administra.
type BranchUseCase struct {
	repo repository.BranchRepository
}

// NewBranchUseCase construye el caso de uso.
func NewBranchUseCase(repo repository.BranchRepository) *BranchUseCase {
	return &BranchUseCase{repo: repo}
}

// Create crea una nueva sucursal.
func (uc *BranchUseCase) Create(in dto.CreateBranchRequest) (*dto.BranchResponse, error) {
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	branch := &entity.Branch{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Address:   in.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(branch); err != nil {
		return nil, err
	}
	return toBranchResponse(branch), nil
}

// GetByID obtiene una sucursal por ID.
func (uc *BranchUseCase) GetByID(id string) (*dto.BranchResponse, error) {
	branch, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if branch == nil {
		return nil, nil
	}
	return toBranchResponse(branch), nil
}

// List lista sucursales con paginación.
func (uc *BranchUseCase) List(limit, offset int) (*dto.BranchListResponse, error) {
	list, err := uc.repo.List(limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.BranchResponse, 0, len(list))
	for _, b := range list {
		items = append(items, *toBranchResponse(b))
	}
	return &dto.BranchListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// Delete elimina una sucursal por ID.
func (uc *BranchUseCase) Delete(id string) error {
	return uc.repo.Delete(id)
}

func toBranchResponse(b *entity.Branch) *dto.BranchResponse {
	if b == nil {
		return nil
	}
	return &dto.BranchResponse{
		ID:        b.ID,
		Name:      b.Name,
		Address:   b.Address,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}
