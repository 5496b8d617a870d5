// Package token defines the value emitted by the scanner engine.
//
// A Token is generic over its kind: the engine never interprets kinds, it
// only carries whatever the grammar passed to Emit. Tokens are immutable
// once built; ownership moves from the scanner to the delivery channel and
// then to the consumer.
package token
