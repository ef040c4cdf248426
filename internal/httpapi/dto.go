package httpapi

import (
	"time"

	"github.com/shopsphere/order-saga/internal/order"
	"github.com/shopsphere/order-saga/internal/saga"
)

type CreateOrderRequest struct {
	UserID          string             `json:"user_id"`
	Items           []OrderItemDTO     `json:"items"`
	ShippingAddress ShippingAddressDTO `json:"shipping_address"`
	Notes           string             `json:"notes,omitempty"`
}

type OrderItemDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type ShippingAddressDTO struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Country string `json:"country,omitempty"`
}

type OrderResponse struct {
	ID                 string              `json:"id"`
	OrderNumber        string              `json:"order_number"`
	UserID             string              `json:"user_id"`
	Items              []OrderItemResponse `json:"items"`
	Subtotal           float64             `json:"subtotal"`
	Tax                float64             `json:"tax"`
	ShippingCost       float64             `json:"shipping_cost"`
	Total              float64             `json:"total"`
	Status             order.Status        `json:"status"`
	SagaID             string              `json:"saga_id,omitempty"`
	SagaStatus         saga.Status         `json:"saga_status,omitempty"`
	ShippingAddress    ShippingAddressDTO  `json:"shipping_address"`
	CancellationReason string              `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

type OrderItemResponse struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name,omitempty"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Subtotal    float64 `json:"subtotal"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func mapOrderToResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemResponse{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Subtotal:    it.Subtotal,
		}
	}
	return OrderResponse{
		ID:           o.ID,
		OrderNumber:  o.OrderNumber,
		UserID:       o.UserID,
		Items:        items,
		Subtotal:     o.Subtotal,
		Tax:          o.Tax,
		ShippingCost: o.ShippingCost,
		Total:        o.Total,
		Status:       o.Status,
		SagaID:       o.SagaID,
		SagaStatus:   o.SagaStatus,
		ShippingAddress: ShippingAddressDTO{
			Street:  o.ShippingAddress.Street,
			City:    o.ShippingAddress.City,
			State:   o.ShippingAddress.State,
			ZipCode: o.ShippingAddress.ZipCode,
			Country: o.ShippingAddress.Country,
		},
		CancellationReason: o.CancellationReason,
		CreatedAt:          o.CreatedAt,
		UpdatedAt:          o.UpdatedAt,
	}
}
