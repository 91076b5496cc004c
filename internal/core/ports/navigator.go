package ports

// Navigator is the navigation capability supplied by the surrounding
// application (a browser redirect, a terminal prompt, a test recorder).
type Navigator interface {
	Navigate(path string)
	CurrentPath() string
}
