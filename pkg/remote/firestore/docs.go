package firestore

import (
	"github.com/okestore/storefront-sync/pkg/enums"
	"github.com/okestore/storefront-sync/pkg/models"
	"github.com/shopspring/decimal"
)

// Firestore has no decimal type; money is stored as a float like the web client does.
type cartLineDoc struct {
	ID       string  `firestore:"id"`
	Name     string  `firestore:"name"`
	Price    float64 `firestore:"price"`
	Image    string  `firestore:"image,omitempty"`
	Quantity int     `firestore:"quantity"`
	Color    string  `firestore:"selectedColor"`
	Size     *string `firestore:"selectedSize,omitempty"`
}

type profileDoc struct {
	UID                   string         `firestore:"uid"`
	Name                  string         `firestore:"name"`
	Email                 string         `firestore:"email"`
	Phone                 string         `firestore:"phone"`
	SignupDate            string         `firestore:"signupDate"`
	Cart                  *[]cartLineDoc `firestore:"cart"`
	Wishlist              *[]string      `firestore:"wishlist"`
	IsPremium             bool           `firestore:"isPremium"`
	SubscriptionPlan      string         `firestore:"subscriptionPlan"`
	SubscriptionExpiry    string         `firestore:"subscriptionExpiry"`
	DownloadsLimit        int            `firestore:"downloadsLimit"`
	DownloadsUsed         int            `firestore:"downloadsUsed"`
	ChatMessagesSent      int            `firestore:"chatMessagesSent"`
	WhatsappSupportExpiry string         `firestore:"whatsappSupportExpiry"`
}

type customerDoc struct {
	Name    string `firestore:"name"`
	Email   string `firestore:"email"`
	Phone   string `firestore:"phone"`
	Address string `firestore:"address"`
	City    string `firestore:"city,omitempty"`
	Pincode string `firestore:"pincode,omitempty"`
}

type orderDoc struct {
	ID                string        `firestore:"id"`
	UserID            string        `firestore:"userId,omitempty"`
	Items             []cartLineDoc `firestore:"items"`
	CustomerDetails   customerDoc   `firestore:"customerDetails"`
	Total             float64       `firestore:"total"`
	Date              string        `firestore:"date"`
	PaymentMethod     string        `firestore:"paymentMethod"`
	Status            string        `firestore:"status"`
	PaymentStatus     string        `firestore:"paymentStatus"`
	TransactionID     string        `firestore:"transactionId,omitempty"`
	PaymentScreenshot string        `firestore:"paymentScreenshot,omitempty"`
}

type verificationDoc struct {
	ID            string `firestore:"id"`
	Type          string `firestore:"type"`
	OrderID       string `firestore:"orderId,omitempty"`
	UserEmail     string `firestore:"userEmail,omitempty"`
	UserPhone     string `firestore:"userPhone,omitempty"`
	UserName      string `firestore:"userName,omitempty"`
	PlanName      string `firestore:"planName,omitempty"`
	Amount        string `firestore:"amount,omitempty"`
	TransactionID string `firestore:"transactionId,omitempty"`
	Screenshot    string `firestore:"screenshot,omitempty"`
	RequestDate   string `firestore:"requestDate"`
}

type readingDoc struct {
	Title     string `firestore:"title"`
	Content   string `firestore:"content"`
	CreatedAt string `firestore:"createdAt"`
}

func cartToDocs(lines []models.CartLine) []cartLineDoc {
	out := make([]cartLineDoc, 0, len(lines))
	for _, l := range lines {
		out = append(out, cartLineDoc{
			ID:       l.ProductID,
			Name:     l.Name,
			Price:    l.Price.InexactFloat64(),
			Image:    l.ImageURL,
			Quantity: l.Quantity,
			Color:    l.Color,
			Size:     l.Size,
		})
	}
	return out
}

func cartFromDocs(docs []cartLineDoc) []models.CartLine {
	out := make([]models.CartLine, 0, len(docs))
	for _, d := range docs {
		out = append(out, models.CartLine{
			ProductID: d.ID,
			Name:      d.Name,
			Price:     decimal.NewFromFloat(d.Price),
			ImageURL:  d.Image,
			Quantity:  d.Quantity,
			Color:     d.Color,
			Size:      d.Size,
		})
	}
	return out
}

func (d profileDoc) toModel(uid string) *models.Profile {
	p := &models.Profile{
		UID:                   d.UID,
		Name:                  d.Name,
		Email:                 d.Email,
		Phone:                 d.Phone,
		SignupDate:            d.SignupDate,
		Wishlist:              d.Wishlist,
		IsPremium:             d.IsPremium,
		SubscriptionPlan:      d.SubscriptionPlan,
		SubscriptionExpiry:    d.SubscriptionExpiry,
		DownloadsLimit:        d.DownloadsLimit,
		DownloadsUsed:         d.DownloadsUsed,
		ChatMessagesSent:      d.ChatMessagesSent,
		WhatsappSupportExpiry: d.WhatsappSupportExpiry,
	}
	if p.UID == "" {
		p.UID = uid
	}
	if d.Cart != nil {
		lines := cartFromDocs(*d.Cart)
		p.Cart = &lines
	}
	return p
}

// encodePartial converts model values into Firestore-encodable ones.
func encodePartial(partial map[string]any) map[string]any {
	out := make(map[string]any, len(partial))
	for k, v := range partial {
		switch typed := v.(type) {
		case []models.CartLine:
			out[k] = cartToDocs(typed)
		case enums.OrderStatus:
			out[k] = string(typed)
		case enums.PaymentStatus:
			out[k] = string(typed)
		default:
			out[k] = v
		}
	}
	return out
}

func orderToDoc(o models.Order) orderDoc {
	return orderDoc{
		ID:     o.ID,
		UserID: o.UserID,
		Items:  cartToDocs(o.Items),
		CustomerDetails: customerDoc{
			Name:    o.Customer.Name,
			Email:   o.Customer.Email,
			Phone:   o.Customer.Phone,
			Address: o.Customer.Address,
			City:    o.Customer.City,
			Pincode: o.Customer.Pincode,
		},
		Total:             o.Total.InexactFloat64(),
		Date:              o.Date,
		PaymentMethod:     string(o.PaymentMethod),
		Status:            string(o.Status),
		PaymentStatus:     string(o.PaymentStatus),
		TransactionID:     o.TransactionID,
		PaymentScreenshot: o.EvidenceImage,
	}
}

func (d orderDoc) toModel(id string) models.Order {
	if d.ID == "" {
		d.ID = id
	}
	return models.Order{
		ID:     d.ID,
		UserID: d.UserID,
		Items:  cartFromDocs(d.Items),
		Customer: models.CustomerDetails{
			Name:    d.CustomerDetails.Name,
			Email:   d.CustomerDetails.Email,
			Phone:   d.CustomerDetails.Phone,
			Address: d.CustomerDetails.Address,
			City:    d.CustomerDetails.City,
			Pincode: d.CustomerDetails.Pincode,
		},
		Total:         decimal.NewFromFloat(d.Total),
		Date:          d.Date,
		PaymentMethod: enums.PaymentMethod(d.PaymentMethod),
		Status:        enums.OrderStatus(d.Status),
		PaymentStatus: enums.PaymentStatus(d.PaymentStatus),
		TransactionID: d.TransactionID,
		EvidenceImage: d.PaymentScreenshot,
	}
}

func verificationToDoc(r models.VerificationRequest) verificationDoc {
	return verificationDoc{
		ID:            r.ID,
		Type:          string(r.Type),
		OrderID:       r.OrderID,
		UserEmail:     r.UserEmail,
		UserPhone:     r.UserPhone,
		UserName:      r.UserName,
		PlanName:      r.PlanName,
		Amount:        r.Amount,
		TransactionID: r.TransactionID,
		Screenshot:    r.EvidenceImage,
		RequestDate:   r.RequestDate,
	}
}

func (d verificationDoc) toModel(id string) models.VerificationRequest {
	if d.ID == "" {
		d.ID = id
	}
	return models.VerificationRequest{
		ID:            d.ID,
		Type:          enums.VerificationType(d.Type),
		OrderID:       d.OrderID,
		UserEmail:     d.UserEmail,
		UserPhone:     d.UserPhone,
		UserName:      d.UserName,
		PlanName:      d.PlanName,
		Amount:        d.Amount,
		TransactionID: d.TransactionID,
		EvidenceImage: d.Screenshot,
		RequestDate:   d.RequestDate,
	}
}
