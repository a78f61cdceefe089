// Package cli provides the interactive Character Studio command-line client.
//
// It wires configuration, the gRPC client and a REPL. Typical flow: upload
// one or more reference images, which starts a character, then watch it
// until it is ready and look at the result or render it in a scene.
//
// Commands:
//   - library                         list your characters
//   - upload <file> [file...]         upload images and start a character
//   - watch <id>                      follow a character until it is done
//   - show <id>                       print a character
//   - generate <id> <out> <prompt...> render the character in a scene
//   - url <path>                      print a download URL for a stored image
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
