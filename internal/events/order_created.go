package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/safar/storefront-api/internal/models"
)

const OrderCreatedEventType = "OrderCreated"

type OrderCreated struct {
	EventID     string           `json:"event_id"`
	EventType   string           `json:"event_type"`
	OrderID     int64            `json:"order_id"`
	UserID      int64            `json:"user_id"`
	TotalAmount models.Money     `json:"total_amount"`
	Status      string           `json:"status"`
	Items       []OrderItemEvent `json:"items"`
	OccurredAt  time.Time        `json:"occurred_at"`
}

type OrderItemEvent struct {
	ProductID int64        `json:"product_id"`
	Quantity  int          `json:"quantity"`
	Price     models.Money `json:"price"`
}

func NewOrderCreated(o *models.Order) OrderCreated {
	ev := OrderCreated{
		EventID:     uuid.NewString(),
		EventType:   OrderCreatedEventType,
		OrderID:     o.ID,
		UserID:      o.UserID,
		TotalAmount: o.TotalAmount,
		Status:      o.Status,
		Items:       make([]OrderItemEvent, 0, len(o.Items)),
		OccurredAt:  time.Now().UTC(),
	}

	for _, it := range o.Items {
		ev.Items = append(ev.Items, OrderItemEvent{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}

	return ev
}
