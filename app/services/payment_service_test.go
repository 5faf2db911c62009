package services

import (
	"context"
	"testing"

	"github.com/modaltela/modal-tela-api/app/apperrors"
	"github.com/modaltela/modal-tela-api/app/models"
)

type fakeGateway struct {
	calls int
}

func (g *fakeGateway) CreatePayment(ctx context.Context, order *models.Order) (*PaymentLink, error) {
	g.calls++
	return &PaymentLink{Token: "tok-" + order.OrderNumber, RedirectURL: "https://pay.test/" + order.OrderNumber}, nil
}

func TestPaymentService_CreatePayment(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	order := f.place(t)
	gateway := &fakeGateway{}
	payments := NewPaymentService(f.env.orderRepo, gateway)

	if _, err := payments.CreatePayment(ctx, guestActor("stranger"), order.ID); !apperrors.Is(err, apperrors.KindNotFound) {
		t.Fatalf("expected not found for a stranger, got %v", err)
	}
	if _, err := f.env.orders.Assign(ctx, staffActor(f.superAdmin), order.ID, AssignOrderInput{AdminID: f.admin.ID}); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if _, err := payments.CreatePayment(ctx, staffActor(f.admin), order.ID); !apperrors.Is(err, apperrors.KindAuthorization) {
		t.Fatalf("expected the assigned admin to be refused, got %v", err)
	}

	link, err := payments.CreatePayment(ctx, staffActor(f.customer), order.ID)
	if err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}
	if link.RedirectURL != "https://pay.test/"+order.OrderNumber {
		t.Fatalf("unexpected redirect %q", link.RedirectURL)
	}
	again, err := payments.CreatePayment(ctx, staffActor(f.customer), order.ID)
	if err != nil {
		t.Fatalf("CreatePayment again: %v", err)
	}
	if again.RedirectURL != link.RedirectURL || gateway.calls != 1 {
		t.Fatalf("expected the stored link to be reused, calls=%d", gateway.calls)
	}

	if _, err := f.env.orders.UpdateStatus(ctx, staffActor(f.superAdmin), order.ID, UpdateStatusInput{Status: models.OrderStatusCancelled}); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if _, err := payments.CreatePayment(ctx, staffActor(f.customer), order.ID); !apperrors.Is(err, apperrors.KindConflict) {
		t.Fatalf("expected conflict for a cancelled order, got %v", err)
	}
}

func TestPaymentService_WithoutGateway(t *testing.T) {
	env := newTestEnv(t)
	payments := NewPaymentService(env.orderRepo, nil)
	if _, err := payments.CreatePayment(context.Background(), guestActor("g"), "any"); !apperrors.Is(err, apperrors.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}
