package email

const (
	subjectVerification     = "Confirm your email address"
	subjectPasswordReset    = "Reset your password"
	subjectMeetingScheduled = "Your meeting is scheduled"
	subjectMeetingReminder  = "Reminder: upcoming meeting"
	subjectMeetingCancelled = "Your meeting was cancelled"
)
