package tools

import "os"

func PanicOnErr(err error) {
	if err != nil {
		panic(err)
	}
}

func FileExist(path string) bool {
	_, err := os.Stat(path)
	if err == nil {
		return true
	}
	return false
}
