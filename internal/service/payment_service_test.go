package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Freeeeeet/tutor_market/internal/events"
	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/payment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKeys = payment.Keys{PublicKey: "pkey_test", SecretKey: "skey_test"}

func enrollIn(t *testing.T, env *testEnv, price int) (*model.User, *model.Enrollment) {
	t.Helper()
	course := env.db.AddCourse("Biology", "biology", price, true)
	student := env.db.AddUser("student", false)
	enrollment, _, err := env.enrollments.Enroll(context.Background(), student.ID, course.ID)
	require.NoError(t, err)
	return student, enrollment
}

func TestPayMock_FreeCourse(t *testing.T) {
	env := newTestEnv(testKeys)
	student, enrollment := enrollIn(t, env, 0)

	_, err := env.payments.PayMock(context.Background(), student.ID, enrollment.ID)
	require.ErrorIs(t, err, ErrFreeCourse)
	assert.Equal(t, "This course is free. No payment required.", ErrorMessage(err))
	assert.Zero(t, env.db.PaymentCount())
}

func TestPayMock_Idempotent(t *testing.T) {
	env := newTestEnv(payment.Keys{})
	ctx := context.Background()
	student, enrollment := enrollIn(t, env, 2500)

	p, err := env.payments.PayMock(ctx, student.ID, enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MockPaymentRef(enrollment.ID), p.ExternalRef)
	assert.Equal(t, model.PaymentStatusPaid, p.Status)
	assert.Equal(t, 2500, p.AmountCents)
	assert.Equal(t, "usd", p.Currency)

	again, err := env.payments.PayMock(ctx, student.ID, enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, again.ID)
	assert.Equal(t, 1, env.db.PaymentCount())
	assert.Equal(t, []string{events.PaymentRecorded}, env.publisher.Keys())

	paid, err := env.payments.PaidEnrollments(ctx, student.ID)
	require.NoError(t, err)
	assert.True(t, paid[enrollment.ID])
}

func TestPayMock_ForeignEnrollment(t *testing.T) {
	env := newTestEnv(payment.Keys{})
	_, enrollment := enrollIn(t, env, 1000)
	other := env.db.AddUser("other", false)

	_, err := env.payments.PayMock(context.Background(), other.ID, enrollment.ID)
	require.ErrorIs(t, err, ErrEnrollmentNotFound)
}

func TestStartCheckout_GatewayDisabled(t *testing.T) {
	env := newTestEnv(payment.Keys{})
	student, enrollment := enrollIn(t, env, 1000)

	assert.False(t, env.payments.GatewayEnabled(context.Background()))

	_, err := env.payments.StartCheckout(context.Background(), student.ID, enrollment.ID)
	require.ErrorIs(t, err, ErrGatewayDisabled)
	assert.Zero(t, env.gateway.Calls)
	assert.Zero(t, env.db.PaymentCount())
}

func TestStartCheckout_CreatesPendingPayment(t *testing.T) {
	env := newTestEnv(testKeys)
	student, enrollment := enrollIn(t, env, 4200)

	res, err := env.payments.StartCheckout(context.Background(), student.ID, enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example/link_test_1", res.URL)
	assert.Equal(t, "link_test_1", res.Payment.ExternalRef)
	assert.Equal(t, model.PaymentStatusCreated, res.Payment.Status)

	assert.Equal(t, 1, env.gateway.Calls)
	assert.Equal(t, int64(4200), env.gateway.Last.AmountCents)
	assert.Equal(t, "Biology", env.gateway.Last.Title)
	assert.Equal(t, testKeys, env.gateway.UsedKeys)
}

func TestStartCheckout_FreeCourseSkipsGateway(t *testing.T) {
	env := newTestEnv(testKeys)
	student, enrollment := enrollIn(t, env, 0)

	_, err := env.payments.StartCheckout(context.Background(), student.ID, enrollment.ID)
	require.ErrorIs(t, err, ErrFreeCourse)
	assert.Zero(t, env.gateway.Calls)
}

func TestStartCheckout_AlreadyPaid(t *testing.T) {
	env := newTestEnv(testKeys)
	ctx := context.Background()
	student, enrollment := enrollIn(t, env, 1000)

	_, err := env.payments.PayMock(ctx, student.ID, enrollment.ID)
	require.NoError(t, err)

	_, err = env.payments.StartCheckout(ctx, student.ID, enrollment.ID)
	require.ErrorIs(t, err, ErrAlreadyPaid)
	assert.Equal(t, "This enrollment is already paid.", ErrorMessage(err))
	assert.Zero(t, env.gateway.Calls)
	assert.Equal(t, 1, env.db.PaymentCount())
}

func TestStartCheckout_GatewayError(t *testing.T) {
	env := newTestEnv(testKeys)
	env.gateway.Err = errors.New("boom")
	student, enrollment := enrollIn(t, env, 1000)

	_, err := env.payments.StartCheckout(context.Background(), student.ID, enrollment.ID)
	require.Error(t, err)
	assert.Zero(t, env.db.PaymentCount())
}

func TestKeys_SiteSettingsOverride(t *testing.T) {
	env := newTestEnv(testKeys)
	env.db.SetActiveSetting(&model.SiteSetting{Name: "default", GatewaySecretKey: "skey_db", IsActive: true})

	keys := env.payments.Keys(context.Background())
	assert.Equal(t, "pkey_test", keys.PublicKey)
	assert.Equal(t, "skey_db", keys.SecretKey)

	// ключи только из настроек сайта
	env = newTestEnv(payment.Keys{})
	env.db.SetActiveSetting(&model.SiteSetting{GatewayPublicKey: "pk", GatewaySecretKey: "sk", IsActive: true})
	assert.True(t, env.payments.GatewayEnabled(context.Background()))
}

func TestCreateCheckoutSession_InvalidPayload(t *testing.T) {
	env := newTestEnv(testKeys)
	student, enrollment := enrollIn(t, env, 1000)
	ctx := context.Background()

	cases := []CheckoutInput{
		{EnrollmentID: 0, AmountCents: 1000},
		{EnrollmentID: enrollment.ID, AmountCents: 0},
		{EnrollmentID: enrollment.ID, AmountCents: -5},
	}
	for _, in := range cases {
		_, err := env.payments.CreateCheckoutSession(ctx, student.ID, in)
		require.ErrorIs(t, err, ErrInvalidPayload)
	}
	assert.Equal(t, "Invalid payload", ErrorMessage(ErrInvalidPayload))
	assert.Zero(t, env.gateway.Calls)

	// сумма из запроса не используется, списывается цена курса
	res, err := env.payments.CreateCheckoutSession(ctx, student.ID, CheckoutInput{EnrollmentID: enrollment.ID, AmountCents: 1, Currency: "usd"})
	require.NoError(t, err)
	assert.Equal(t, 1000, res.Payment.AmountCents)
}
