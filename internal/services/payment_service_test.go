package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/landlink/survey-backend/internal/database"
	"github.com/landlink/survey-backend/internal/models"
)

func newPaymentService(t *testing.T, card CardGateway, mobile MobileGateway) (*PaymentService, *recordingNotifier, sqlmock.Sqlmock) {
	t.Helper()

	db, mock := newMockDB(t)
	notifier := &recordingNotifier{}
	service := NewPaymentService(
		database.NewPaymentRepository(db),
		card,
		mobile,
		notifier,
		newTestLogger(),
	)
	return service, notifier, mock
}

func TestInitiateCard(t *testing.T) {
	t.Run("Intent Recorded With Provider Reference", func(t *testing.T) {
		card := &fakeCardGateway{checkout: &CardCheckout{
			Reference:        "ps_ref_abc123",
			AuthorizationURL: "https://checkout.paystack.com/abc123",
		}}
		service, _, mock := newPaymentService(t, card, &fakeMobileGateway{})

		mock.ExpectExec(`INSERT INTO payments`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		payment, checkoutURL, err := service.InitiateCard("client@example.com", 15000, nil)
		require.NoError(t, err)
		assert.Equal(t, "ps_ref_abc123", payment.Reference)
		assert.Equal(t, models.PaymentProviderPaystack, payment.Provider)
		assert.Equal(t, models.PaymentStatusPending, payment.Status)
		assert.Equal(t, "https://checkout.paystack.com/abc123", checkoutURL)
		assert.Equal(t, 1, card.calls)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Provider Failure Records Nothing", func(t *testing.T) {
		card := &fakeCardGateway{err: fmt.Errorf("connection refused")}
		service, _, mock := newPaymentService(t, card, &fakeMobileGateway{})

		_, _, err := service.InitiateCard("client@example.com", 15000, nil)
		assert.ErrorIs(t, err, ErrProviderUnavailable)

		// No intent row may exist without a provider reference
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestInitiateMobile(t *testing.T) {
	t.Run("Intent Recorded With Checkout Request ID", func(t *testing.T) {
		mobile := &fakeMobileGateway{reference: "ws_CO_260830121502"}
		service, _, mock := newPaymentService(t, &fakeCardGateway{}, mobile)

		bookingID := uuid.New()
		mock.ExpectExec(`INSERT INTO payments`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		payment, err := service.InitiateMobile("+254712345678", 15000, &bookingID)
		require.NoError(t, err)
		assert.Equal(t, "ws_CO_260830121502", payment.Reference)
		assert.Equal(t, models.PaymentProviderMpesa, payment.Provider)
		require.NotNil(t, payment.BookingID)
		assert.Equal(t, bookingID, *payment.BookingID)

		// Ledger keeps minor units; the prompt goes out in whole shillings
		assert.Equal(t, int64(15000), payment.Amount)
		assert.Equal(t, int64(150), mobile.amount)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Sub-Shilling Remainder Rounds The Prompt Up", func(t *testing.T) {
		mobile := &fakeMobileGateway{reference: "ws_CO_260830121503"}
		service, _, mock := newPaymentService(t, &fakeCardGateway{}, mobile)

		mock.ExpectExec(`INSERT INTO payments`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		payment, err := service.InitiateMobile("+254712345678", 15050, nil)
		require.NoError(t, err)
		assert.Equal(t, int64(15050), payment.Amount)
		assert.Equal(t, int64(151), mobile.amount)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Provider Failure Records Nothing", func(t *testing.T) {
		mobile := &fakeMobileGateway{err: fmt.Errorf("oauth rejected")}
		service, _, mock := newPaymentService(t, &fakeCardGateway{}, mobile)

		_, err := service.InitiateMobile("+254712345678", 15000, nil)
		assert.ErrorIs(t, err, ErrProviderUnavailable)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestReconcile(t *testing.T) {
	t.Run("Pending Payment Resolves And Notifies Once", func(t *testing.T) {
		service, notifier, mock := newPaymentService(t, &fakeCardGateway{}, &fakeMobileGateway{})

		payment := &models.Payment{
			ID:        uuid.New(),
			Payer:     "client@example.com",
			Amount:    15000,
			Provider:  models.PaymentProviderPaystack,
			Status:    models.PaymentStatusPending,
			Reference: "ps_ref_abc123",
		}

		mock.ExpectQuery(`SELECT (.+) FROM payments WHERE reference`).
			WithArgs("ps_ref_abc123").
			WillReturnRows(paymentRow(payment))
		mock.ExpectExec(`UPDATE payments SET status`).
			WithArgs(models.PaymentStatusSuccess, sqlmock.AnyArg(), "ps_ref_abc123").
			WillReturnResult(sqlmock.NewResult(0, 1))

		transitioned, err := service.Reconcile("ps_ref_abc123", true)
		require.NoError(t, err)
		assert.True(t, transitioned)

		require.Len(t, notifier.resolved, 1)
		assert.Equal(t, models.PaymentStatusSuccess, notifier.resolved[0].Status)
		assert.NotNil(t, notifier.resolved[0].ResolvedAt)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Unknown Reference Is Acknowledged Silently", func(t *testing.T) {
		service, notifier, mock := newPaymentService(t, &fakeCardGateway{}, &fakeMobileGateway{})

		mock.ExpectQuery(`SELECT (.+) FROM payments WHERE reference`).
			WithArgs("no_such_ref").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "payer", "amount", "provider", "status", "reference",
				"booking_id", "resolved_at", "created_at",
			}))

		transitioned, err := service.Reconcile("no_such_ref", true)
		require.NoError(t, err)
		assert.False(t, transitioned)
		assert.Empty(t, notifier.resolved)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Replayed Callback Cannot Flip The Outcome", func(t *testing.T) {
		service, notifier, mock := newPaymentService(t, &fakeCardGateway{}, &fakeMobileGateway{})

		resolvedAt := time.Now()
		payment := &models.Payment{
			ID:         uuid.New(),
			Payer:      "client@example.com",
			Amount:     15000,
			Provider:   models.PaymentProviderPaystack,
			Status:     models.PaymentStatusSuccess,
			Reference:  "ps_ref_abc123",
			ResolvedAt: &resolvedAt,
		}

		mock.ExpectQuery(`SELECT (.+) FROM payments WHERE reference`).
			WillReturnRows(paymentRow(payment))
		mock.ExpectExec(`UPDATE payments SET status`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		transitioned, err := service.Reconcile("ps_ref_abc123", false)
		require.NoError(t, err)
		assert.False(t, transitioned)
		assert.Empty(t, notifier.resolved)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
