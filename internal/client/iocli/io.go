package iocli

// IO ввод и вывод CLI. Пароли читаются без эха, если ввод является терминалом.
type IO interface {
	Println(a ...any)
	Printf(format string, a ...any)
	ReadInput(prompt string) (string, error)
	ReadPassword(prompt string) (string, error)
	Write(p []byte) (n int, err error)
}
