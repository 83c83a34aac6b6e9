package main

import "github.com/prajyotrote/coaching-os-sub000/cmd/coach"

func main() {
	coach.Execute()
}
