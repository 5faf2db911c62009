package services

import (
	"context"
	"fmt"
	"log"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"
	"github.com/modaltela/modal-tela-api/app/apperrors"
	"github.com/modaltela/modal-tela-api/app/models"
	"github.com/modaltela/modal-tela-api/app/policy"
	"github.com/modaltela/modal-tela-api/app/repositories"
)

type PaymentLink struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// PaymentGateway creates a hosted payment page for an order.
type PaymentGateway interface {
	CreatePayment(ctx context.Context, order *models.Order) (*PaymentLink, error)
}

type MidtransGateway struct {
	client *snap.Client
	appURL string
}

func NewMidtransGateway(client *snap.Client, appURL string) *MidtransGateway {
	return &MidtransGateway{client: client, appURL: appURL}
}

func (g *MidtransGateway) CreatePayment(ctx context.Context, order *models.Order) (*PaymentLink, error) {
	items := make([]midtrans.ItemDetails, 0, len(order.Items)+2)
	for _, item := range order.Items {
		items = append(items, midtrans.ItemDetails{
			ID:    item.ProductID,
			Name:  item.ProductName,
			Price: item.Price.Round(0).IntPart(),
			Qty:   int32(item.Quantity),
		})
	}
	if order.ShippingCost.IsPositive() {
		items = append(items, midtrans.ItemDetails{ID: "SHIPPING", Name: "Shipping", Price: order.ShippingCost.Round(0).IntPart(), Qty: 1})
	}
	if order.Tax.IsPositive() {
		items = append(items, midtrans.ItemDetails{ID: "TAX", Name: "Tax", Price: order.Tax.Round(0).IntPart(), Qty: 1})
	}

	var gross int64
	for _, item := range items {
		gross += item.Price * int64(item.Qty)
	}

	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  order.OrderNumber,
			GrossAmt: gross,
		},
		CreditCard: &snap.CreditCardDetails{Secure: true},
		CustomerDetail: &midtrans.CustomerDetails{
			FName: order.BillingFirstName,
			LName: order.BillingLastName,
			Email: order.BillingEmail,
			Phone: order.BillingPhone,
			BillAddr: &midtrans.CustomerAddress{
				FName:    order.BillingFirstName,
				LName:    order.BillingLastName,
				Phone:    order.BillingPhone,
				Address:  order.BillingAddress,
				City:     order.BillingCity,
				Postcode: order.BillingPostalCode,
			},
			ShipAddr: &midtrans.CustomerAddress{
				FName:    order.ShippingFirstName,
				LName:    order.ShippingLastName,
				Address:  order.ShippingAddress,
				City:     order.ShippingCity,
				Postcode: order.ShippingPostalCode,
			},
		},
		Items: &items,
		Callbacks: &snap.Callbacks{
			Finish: fmt.Sprintf("%s/orders/%s", g.appURL, order.ID),
		},
		CustomField1: order.ID,
	}

	resp, mErr := g.client.CreateTransaction(req)
	if mErr != nil {
		return nil, fmt.Errorf("midtrans create transaction for %s: %s", order.OrderNumber, mErr.GetMessage())
	}
	return &PaymentLink{Token: resp.Token, RedirectURL: resp.RedirectURL}, nil
}

// PaymentService issues payment links for pending orders the caller can see.
type PaymentService struct {
	orderRepo repositories.OrderRepository
	gateway   PaymentGateway
}

// NewPaymentService accepts a nil gateway; payments are then reported as unavailable.
func NewPaymentService(orderRepo repositories.OrderRepository, gateway PaymentGateway) *PaymentService {
	return &PaymentService{orderRepo: orderRepo, gateway: gateway}
}

func (s *PaymentService) CreatePayment(ctx context.Context, actor policy.Actor, orderID string) (*PaymentLink, error) {
	if s.gateway == nil {
		return nil, apperrors.Conflict("online payment is not configured")
	}
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, apperrors.Unexpected("could not load order", err)
	}
	if order == nil || !policy.CanPerform(actor, policy.ViewOrder, policy.OrderResource(order)) {
		return nil, apperrors.NotFound("order not found")
	}
	if !policy.CanPerform(actor, policy.PayOrder, policy.OrderResource(order)) {
		return nil, apperrors.Authorization("only the customer can pay for this order")
	}
	if order.Status != models.OrderStatusPending {
		return nil, apperrors.Conflict("only pending orders can be paid")
	}
	if order.PaymentURL != "" {
		return &PaymentLink{Token: order.PaymentToken, RedirectURL: order.PaymentURL}, nil
	}

	link, err := s.gateway.CreatePayment(ctx, order)
	if err != nil {
		return nil, apperrors.Unexpected("could not start payment", err)
	}
	fields := map[string]interface{}{"payment_token": link.Token, "payment_url": link.RedirectURL}
	if err := s.orderRepo.UpdateFields(ctx, order.ID, fields); err != nil {
		log.Printf("PaymentService.CreatePayment: failed to store payment link for %s: %v", order.OrderNumber, err)
	}
	log.Printf("PaymentService.CreatePayment: payment link created for order %s", order.OrderNumber)
	return link, nil
}
