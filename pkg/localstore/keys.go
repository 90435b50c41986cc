package localstore

// Collection keys. These strings are shared with earlier clients and must not change.
const (
	KeyLanguage             = "okFutureZoneLanguage"
	KeyTheme                = "okFutureZoneTheme"
	KeyExtendedProfiles     = "okFutureZoneExtendedProfiles"
	KeyOrders               = "okFutureZoneOrders"
	KeySupportTickets       = "okFutureZoneSupportTickets"
	KeyWishlist             = "okFutureZoneWishlist"
	KeyCart                 = "okFutureZoneCartItems"
	KeyNotifications        = "okFutureZoneNotifications"
	KeyPendingVerifications = "okFutureZonePendingVerifications"
	KeySocialPosts          = "okFutureZoneSocialMediaPosts"
	KeyDailyNotificationDay = "ok_daily_notif_date"
)
