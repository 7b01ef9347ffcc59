// Command arclink runs either side of the two-node serial link: the
// sensor coordinator, the renderer, or one-shot utilities (file send,
// render-channel ping) against a running peer.
package main

func main() {
	Execute()
}
