package main

import (

	"mygcc-backend/cmd/mygcc/commands"
	"mygcc-backend/lib/serviceutil"
)

func main() {
	commands.ExecuteContext(serviceutil.SignalContext())
}
