package models

import "time"

// Profile is the durable account document. Cart and Wishlist are pointers so an absent
// field can be told apart from an empty one.
type Profile struct {
	UID                   string      `json:"uid"`
	Name                  string      `json:"name"`
	Email                 string      `json:"email"`
	Phone                 string      `json:"phone"`
	SignupDate            string      `json:"signupDate"`
	Cart                  *[]CartLine `json:"cart,omitempty"`
	Wishlist              *[]string   `json:"wishlist,omitempty"`
	IsPremium             bool        `json:"isPremium"`
	SubscriptionPlan      string      `json:"subscriptionPlan,omitempty"`
	SubscriptionExpiry    string      `json:"subscriptionExpiry,omitempty"`
	DownloadsLimit        int         `json:"downloadsLimit"`
	DownloadsUsed         int         `json:"downloadsUsed"`
	ChatMessagesSent      int         `json:"chatMessagesSent"`
	WhatsappSupportExpiry string      `json:"whatsappSupportExpiry,omitempty"`
}

// Profile field names as stored remotely; partial writes are keyed by these.
const (
	FieldName                  = "name"
	FieldEmail                 = "email"
	FieldPhone                 = "phone"
	FieldSignupDate            = "signupDate"
	FieldUID                   = "uid"
	FieldCart                  = "cart"
	FieldWishlist              = "wishlist"
	FieldIsPremium             = "isPremium"
	FieldSubscriptionPlan      = "subscriptionPlan"
	FieldSubscriptionExpiry    = "subscriptionExpiry"
	FieldDownloadsLimit        = "downloadsLimit"
	FieldDownloadsUsed         = "downloadsUsed"
	FieldChatMessagesSent      = "chatMessagesSent"
	FieldWhatsappSupportExpiry = "whatsappSupportExpiry"
)

// DefaultProfile synthesizes the profile shown before one exists remotely.
func DefaultProfile(identity SessionIdentity, now time.Time) *Profile {
	name := identity.DisplayName
	if name == "" {
		name = "User"
	}
	return &Profile{
		UID:        identity.AccountID,
		Name:       name,
		Email:      identity.Email,
		SignupDate: now.UTC().Format(time.RFC3339),
	}
}

// Clone returns a deep copy so callers can mutate without touching shared snapshots.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	out := *p
	if p.Cart != nil {
		lines := CloneCart(*p.Cart)
		out.Cart = &lines
	}
	if p.Wishlist != nil {
		ids := append([]string(nil), (*p.Wishlist)...)
		out.Wishlist = &ids
	}
	return &out
}

// ToFields flattens the profile into a full write payload.
func (p *Profile) ToFields() map[string]any {
	fields := map[string]any{
		FieldUID:              p.UID,
		FieldName:             p.Name,
		FieldEmail:            p.Email,
		FieldPhone:            p.Phone,
		FieldSignupDate:       p.SignupDate,
		FieldIsPremium:        p.IsPremium,
		FieldDownloadsLimit:   p.DownloadsLimit,
		FieldDownloadsUsed:    p.DownloadsUsed,
		FieldChatMessagesSent: p.ChatMessagesSent,
	}
	if p.Cart != nil {
		fields[FieldCart] = *p.Cart
	}
	if p.Wishlist != nil {
		fields[FieldWishlist] = *p.Wishlist
	}
	if p.SubscriptionPlan != "" {
		fields[FieldSubscriptionPlan] = p.SubscriptionPlan
	}
	if p.SubscriptionExpiry != "" {
		fields[FieldSubscriptionExpiry] = p.SubscriptionExpiry
	}
	if p.WhatsappSupportExpiry != "" {
		fields[FieldWhatsappSupportExpiry] = p.WhatsappSupportExpiry
	}
	return fields
}

// Apply merges a partial write into the profile. Unknown keys are ignored.
func (p *Profile) Apply(partial map[string]any) {
	for key, value := range partial {
		switch key {
		case FieldName:
			p.Name, _ = value.(string)
		case FieldEmail:
			p.Email, _ = value.(string)
		case FieldPhone:
			p.Phone, _ = value.(string)
		case FieldSignupDate:
			p.SignupDate, _ = value.(string)
		case FieldCart:
			if lines, ok := value.([]CartLine); ok {
				cp := CloneCart(lines)
				p.Cart = &cp
			}
		case FieldWishlist:
			if ids, ok := value.([]string); ok {
				cp := append([]string(nil), ids...)
				p.Wishlist = &cp
			}
		case FieldIsPremium:
			p.IsPremium, _ = value.(bool)
		case FieldSubscriptionPlan:
			p.SubscriptionPlan, _ = value.(string)
		case FieldSubscriptionExpiry:
			p.SubscriptionExpiry, _ = value.(string)
		case FieldDownloadsLimit:
			p.DownloadsLimit = toInt(value)
		case FieldDownloadsUsed:
			p.DownloadsUsed = toInt(value)
		case FieldChatMessagesSent:
			p.ChatMessagesSent = toInt(value)
		case FieldWhatsappSupportExpiry:
			p.WhatsappSupportExpiry, _ = value.(string)
		}
	}
}

func toInt(value any) int {
	switch v := value.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
