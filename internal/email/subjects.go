package email

const (
	subjectBookingChangedFmt   = "Din bokning %s har uppdaterats"
	subjectBookingCancelledFmt = "Din bokning %s är avbokad"
)
