//go:build integration

package repository_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"fulfillment-platform/internal/apperr"
	"fulfillment-platform/internal/domain"
	"fulfillment-platform/internal/repository"
)

type StockRepositorySuite struct {
	suite.Suite
	repo *repository.StockRepo
}

func TestStockRepositorySuite(t *testing.T) {
	suite.Run(t, new(StockRepositorySuite))
}

func (s *StockRepositorySuite) SetupTest() {
	truncateAll(s.T())
	s.repo = repository.NewStockRepo(tcPool)
}

func (s *StockRepositorySuite) createProduct(qty int, active bool) int64 {
	id, err := s.repo.Create(context.Background(), &domain.Product{
		Name:      "widget",
		Quantity:  qty,
		UnitPrice: decimal.RequireFromString("9.99"),
		Active:    active,
	})
	s.Require().NoError(err)
	return id
}

func (s *StockRepositorySuite) TestReserve_DecrementsAndReturnsPrice() {
	ctx := context.Background()
	id := s.createProduct(10, true)

	line, err := s.repo.Reserve(ctx, id, 4)
	s.Require().NoError(err)
	s.Equal(id, line.ProductID)
	s.Equal(4, line.Quantity)
	s.True(decimal.RequireFromString("9.99").Equal(line.UnitPrice))

	p, err := s.repo.Get(ctx, id)
	s.Require().NoError(err)
	s.Equal(6, p.Quantity)
}

func (s *StockRepositorySuite) TestReserve_Insufficient_LeavesQuantity() {
	ctx := context.Background()
	id := s.createProduct(3, true)

	_, err := s.repo.Reserve(ctx, id, 4)
	s.Require().ErrorIs(err, apperr.ErrInsufficientStock)

	p, err := s.repo.Get(ctx, id)
	s.Require().NoError(err)
	s.Equal(3, p.Quantity)
}

func (s *StockRepositorySuite) TestReserve_MissingOrInactive_NotFound() {
	ctx := context.Background()
	inactive := s.createProduct(10, false)

	_, err := s.repo.Reserve(ctx, inactive, 1)
	s.ErrorIs(err, apperr.ErrNotFound)

	_, err = s.repo.Reserve(ctx, 9999, 1)
	s.ErrorIs(err, apperr.ErrNotFound)
}

func (s *StockRepositorySuite) TestReserve_ConcurrentNeverNegative() {
	ctx := context.Background()
	id := s.createProduct(10, true)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.repo.Reserve(ctx, id, 1); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	p, err := s.repo.Get(ctx, id)
	s.Require().NoError(err)
	s.Equal(10, ok)
	s.Equal(0, p.Quantity)
}

func (s *StockRepositorySuite) TestRelease() {
	ctx := context.Background()
	id := s.createProduct(1, true)

	found, err := s.repo.Release(ctx, id, 5)
	s.Require().NoError(err)
	s.True(found)

	found, err = s.repo.Release(ctx, 9999, 5)
	s.Require().NoError(err)
	s.False(found)

	p, err := s.repo.Get(ctx, id)
	s.Require().NoError(err)
	s.Equal(6, p.Quantity)
}
