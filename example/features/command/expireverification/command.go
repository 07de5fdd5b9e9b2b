package expireverification

const commandType = "ExpireEmailVerification"

type Command struct {
	Email string `json:"email" yaml:"email"`
}

func (c Command) CommandType() string {
	return commandType
}

func BuildCommand(email string) Command {
	return Command{Email: email}
}
