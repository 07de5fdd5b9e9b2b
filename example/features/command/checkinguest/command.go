package checkinguest

const commandType = "CheckInGuest"

type Command struct {
	BookingID   string `json:"bookingId" yaml:"bookingId"`
	GuestID     string `json:"guestId" yaml:"guestId"`
	ContainerID string `json:"containerId" yaml:"containerId"`
}

func (c Command) CommandType() string {
	return commandType
}

func BuildCommand(bookingID, guestID, containerID string) Command {
	return Command{BookingID: bookingID, GuestID: guestID, ContainerID: containerID}
}
