package service

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/usedgoods/marketplace/internal/model"
	"github.com/usedgoods/marketplace/internal/repository"
	"gopkg.in/yaml.v3"
)

//go:embed seed/payment_methods.yaml
var paymentMethodsSeed []byte

type PaymentMethodService struct {
	methodRepo repository.PaymentMethodRepository
}

func NewPaymentMethodService(methodRepo repository.PaymentMethodRepository) *PaymentMethodService {
	return &PaymentMethodService{methodRepo: methodRepo}
}

func (s *PaymentMethodService) All(ctx context.Context) ([]model.PaymentMethod, error) {
	methods, err := s.methodRepo.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list payment methods: %w", err)
	}
	return methods, nil
}

// Seed inserts the built-in payment methods. Existing keys are left untouched,
// so running it twice is safe.
func (s *PaymentMethodService) Seed(ctx context.Context) (int, error) {
	methods, err := DefaultPaymentMethods()
	if err != nil {
		return 0, err
	}

	for _, pm := range methods {
		err = s.methodRepo.Upsert(ctx, pm)
		if err != nil {
			return 0, fmt.Errorf("failed to seed payment method %q: %w", pm.Key, err)
		}
	}

	slog.Info("payment methods seeded", "count", len(methods))
	return len(methods), nil
}

// DefaultPaymentMethods parses the embedded seed file.
func DefaultPaymentMethods() ([]model.PaymentMethod, error) {
	var methods []model.PaymentMethod
	err := yaml.Unmarshal(paymentMethodsSeed, &methods)
	if err != nil {
		return nil, fmt.Errorf("failed to parse payment method seed: %w", err)
	}
	for _, pm := range methods {
		if pm.Key == "" || pm.Name == "" {
			return nil, fmt.Errorf("payment method seed entry is missing key or name: %+v", pm)
		}
	}
	return methods, nil
}
