package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/tutor_market/internal/events"
	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/payment"
	"go.uber.org/zap"
)

type PaymentService struct {
	enrollmentRepo EnrollmentStore
	paymentRepo    PaymentStore
	settingsRepo   SettingsStore
	gateway        payment.Gateway
	envKeys        payment.Keys
	currency       string
	publisher      events.Publisher
	logger         *zap.Logger
}

func NewPaymentService(
	enrollmentRepo EnrollmentStore,
	paymentRepo PaymentStore,
	settingsRepo SettingsStore,
	gateway payment.Gateway,
	envKeys payment.Keys,
	currency string,
	publisher events.Publisher,
	logger *zap.Logger,
) *PaymentService {
	if currency == "" {
		currency = model.DefaultCurrency
	}
	return &PaymentService{
		enrollmentRepo: enrollmentRepo,
		paymentRepo:    paymentRepo,
		settingsRepo:   settingsRepo,
		gateway:        gateway,
		envKeys:        envKeys,
		currency:       currency,
		publisher:      publisher,
		logger:         logger,
	}
}

type paymentEvent struct {
	PaymentID    int64  `json:"payment_id"`
	EnrollmentID int64  `json:"enrollment_id"`
	AmountCents  int    `json:"amount_cents"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
}

// CheckoutResult is a started hosted checkout
type CheckoutResult struct {
	URL     string
	Payment *model.Payment
}

// CheckoutInput is the API checkout payload
type CheckoutInput struct {
	EnrollmentID int64  `json:"enrollment_id"`
	AmountCents  int    `json:"amount_cents"`
	Currency     string `json:"currency"`
}

// Keys returns the gateway keys in effect. Fields of the active site
// settings row win over the environment when they are non-empty.
func (s *PaymentService) Keys(ctx context.Context) payment.Keys {
	keys := s.envKeys

	setting, err := s.settingsRepo.GetActive(ctx)
	if err != nil {
		s.logger.Warn("Failed to load site settings, using environment keys", zap.Error(err))
		return keys
	}
	if setting == nil {
		return keys
	}

	if setting.GatewayPublicKey != "" {
		keys.PublicKey = setting.GatewayPublicKey
	}
	if setting.GatewaySecretKey != "" {
		keys.SecretKey = setting.GatewaySecretKey
	}
	return keys
}

func (s *PaymentService) GatewayEnabled(ctx context.Context) bool {
	return s.Keys(ctx).Enabled()
}

// payableEnrollment returns the student's enrollment for a paid course
func (s *PaymentService) payableEnrollment(ctx context.Context, studentID, enrollmentID int64) (*model.Enrollment, error) {
	enrollment, err := s.enrollmentRepo.GetByID(ctx, enrollmentID)
	if err != nil {
		return nil, fmt.Errorf("get enrollment: %w", err)
	}
	if enrollment == nil || enrollment.StudentID != studentID || enrollment.Course == nil {
		return nil, ErrEnrollmentNotFound
	}
	if enrollment.Course.IsFree() {
		return nil, ErrFreeCourse
	}
	return enrollment, nil
}

// PayMock records a sample paid payment for the enrollment.
// An enrollment that already has a paid payment is not charged again.
func (s *PaymentService) PayMock(ctx context.Context, studentID, enrollmentID int64) (*model.Payment, error) {
	enrollment, err := s.payableEnrollment(ctx, studentID, enrollmentID)
	if err != nil {
		return nil, err
	}

	existing, err := s.paymentRepo.GetPaidByEnrollment(ctx, enrollment.ID)
	if err != nil {
		return nil, fmt.Errorf("get paid payment: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	p, created, err := s.paymentRepo.GetOrCreate(ctx, &model.Payment{
		EnrollmentID: enrollment.ID,
		AmountCents:  enrollment.Course.PriceCents,
		Currency:     s.currency,
		ExternalRef:  model.MockPaymentRef(enrollment.ID),
		Status:       model.PaymentStatusPaid,
	})
	if err != nil {
		return nil, fmt.Errorf("record payment: %w", err)
	}

	if created {
		s.logger.Info("Sample payment recorded",
			zap.Int64("payment_id", p.ID),
			zap.Int64("enrollment_id", enrollment.ID),
			zap.Int("amount_cents", p.AmountCents))

		publish(ctx, s.publisher, s.logger, events.PaymentRecorded, paymentEvent{
			PaymentID:    p.ID,
			EnrollmentID: p.EnrollmentID,
			AmountCents:  p.AmountCents,
			Currency:     p.Currency,
			Status:       p.Status,
		})
	}

	return p, nil
}

// StartCheckout creates a hosted payment link for the enrollment and
// stores a payment in the created state under the link id.
// A paid enrollment gets ErrAlreadyPaid without calling the gateway.
func (s *PaymentService) StartCheckout(ctx context.Context, studentID, enrollmentID int64) (*CheckoutResult, error) {
	enrollment, err := s.payableEnrollment(ctx, studentID, enrollmentID)
	if err != nil {
		return nil, err
	}

	paid, err := s.paymentRepo.GetPaidByEnrollment(ctx, enrollment.ID)
	if err != nil {
		return nil, fmt.Errorf("get paid payment: %w", err)
	}
	if paid != nil {
		return nil, ErrAlreadyPaid
	}

	keys := s.Keys(ctx)
	if !keys.Enabled() {
		return nil, ErrGatewayDisabled
	}

	course := enrollment.Course
	session, err := s.gateway.CreateCheckout(ctx, keys, payment.CheckoutRequest{
		AmountCents: int64(course.PriceCents),
		Currency:    s.currency,
		Title:       course.Title,
		Description: fmt.Sprintf("Enrollment #%d", enrollment.ID),
	})
	if err != nil {
		s.logger.Error("Failed to create checkout",
			zap.Int64("enrollment_id", enrollment.ID),
			zap.Error(err))
		if errors.Is(err, payment.ErrGatewayDisabled) {
			return nil, ErrGatewayDisabled
		}
		return nil, fmt.Errorf("create checkout: %w", err)
	}

	p, _, err := s.paymentRepo.GetOrCreate(ctx, &model.Payment{
		EnrollmentID: enrollment.ID,
		AmountCents:  course.PriceCents,
		Currency:     s.currency,
		ExternalRef:  session.ID,
		Status:       model.PaymentStatusCreated,
	})
	if err != nil {
		return nil, fmt.Errorf("record checkout payment: %w", err)
	}

	s.logger.Info("Checkout created",
		zap.Int64("payment_id", p.ID),
		zap.Int64("enrollment_id", enrollment.ID),
		zap.String("external_ref", session.ID))

	publish(ctx, s.publisher, s.logger, events.CheckoutCreated, paymentEvent{
		PaymentID:    p.ID,
		EnrollmentID: p.EnrollmentID,
		AmountCents:  p.AmountCents,
		Currency:     p.Currency,
		Status:       p.Status,
	})

	return &CheckoutResult{URL: session.URL, Payment: p}, nil
}

// CreateCheckoutSession is the API entry point. The payload amount is
// validated but the course price is what gets charged.
func (s *PaymentService) CreateCheckoutSession(ctx context.Context, studentID int64, in CheckoutInput) (*CheckoutResult, error) {
	if in.EnrollmentID <= 0 || in.AmountCents <= 0 {
		return nil, ErrInvalidPayload
	}
	return s.StartCheckout(ctx, studentID, in.EnrollmentID)
}

func (s *PaymentService) ListForStudent(ctx context.Context, studentID int64) ([]*model.Payment, error) {
	payments, err := s.paymentRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return payments, nil
}

// ForStudent returns a payment belonging to one of the student's enrollments
func (s *PaymentService) ForStudent(ctx context.Context, studentID, paymentID int64) (*model.Payment, error) {
	p, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	if p == nil || p.Enrollment == nil || p.Enrollment.StudentID != studentID {
		return nil, ErrPaymentNotFound
	}
	return p, nil
}

// PaidEnrollments returns the set of enrollment ids with a paid payment
func (s *PaymentService) PaidEnrollments(ctx context.Context, studentID int64) (map[int64]bool, error) {
	ids, err := s.paymentRepo.PaidEnrollmentIDs(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list paid enrollments: %w", err)
	}
	return ids, nil
}
