// Package vacation implements out of office replies: deciding whether an
// inbound message may be answered, decoding the autoreply transport address,
// composing the reply, and handing it to an SMTP relay.
package vacation
