package mqtt

// TopicAudit returns the topic audit events for a given action publish to,
// e.g. campusgate/audit/login.
func TopicAudit(action string) string {
	return "campusgate/audit/" + action
}
