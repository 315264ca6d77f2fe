// Package audio plays the PCM clips produced by the speech engines. The real
// player is built on oto/v3; MockPlayer stands in for it in tests and on
// machines without an audio device.
package audio
