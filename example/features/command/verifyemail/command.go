package verifyemail

const commandType = "VerifyEmail"

type Command struct {
	Email             string `json:"email" yaml:"email"`
	VerificationToken string `json:"verificationToken" yaml:"verificationToken"`
}

func (c Command) CommandType() string {
	return commandType
}

func BuildCommand(email, verificationToken string) Command {
	return Command{Email: email, VerificationToken: verificationToken}
}
