package activity

// ListActivityOptions provides filtering options for listing activity.
type ListActivityOptions struct {
	DeviceID     string
	PersonID     *string
	ActivityType *ActivityType
	Limit        int
	Offset       int
}
