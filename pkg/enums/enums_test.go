package enums

import "testing"

func TestParseVerificationType(t *testing.T) {
	got, err := ParseVerificationType("SUBSCRIPTION")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != VerificationTypeSubscription {
		t.Fatalf("expected SUBSCRIPTION, got %s", got)
	}
	if _, err := ParseVerificationType("REFUND"); err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestPaymentEnums(t *testing.T) {
	if !PaymentMethodCOD.IsValid() || PaymentMethod("card").IsValid() {
		t.Fatal("unexpected payment method validity")
	}
	if _, err := ParsePaymentStatus("COMPLETED"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestTicketAndLanguage(t *testing.T) {
	if _, err := ParseTicketStatus("Resolved"); err == nil {
		t.Fatal("expected invalid ticket status")
	}
	if ParseLanguage("fr") != LanguageEnglish {
		t.Fatal("unknown language should fall back to english")
	}
	if ParseLanguage("hi") != LanguageHindi {
		t.Fatal("expected hindi")
	}
}

func TestPaymentMethodInitialStatuses(t *testing.T) {
	order, payment := PaymentMethodPrepaid.InitialStatuses()
	if order != OrderStatusVerificationPending || !payment.AwaitingApproval() {
		t.Fatalf("prepaid starts as %s/%s", order, payment)
	}
	order, payment = PaymentMethodCOD.InitialStatuses()
	if order != OrderStatusProcessing || payment != PaymentStatusPending || payment.AwaitingApproval() {
		t.Fatalf("cod starts as %s/%s", order, payment)
	}
	if _, err := ParsePaymentMethod("UPI"); err == nil {
		t.Fatal("expected error for unknown method")
	}
}
