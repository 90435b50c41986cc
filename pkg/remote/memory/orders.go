package memory

import (
	"fmt"

	"github.com/okestore/storefront-sync/pkg/enums"
	"github.com/okestore/storefront-sync/pkg/models"
)

func applyOrderPartial(order *models.Order, partial map[string]any) {
	for key, value := range partial {
		switch key {
		case models.OrderFieldStatus:
			order.Status = enums.OrderStatus(fmt.Sprint(value))
		case models.OrderFieldPaymentStatus:
			order.PaymentStatus = enums.PaymentStatus(fmt.Sprint(value))
		}
	}
}
