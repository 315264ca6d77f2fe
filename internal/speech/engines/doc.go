// Package engines provides the speech engines behind the speaker: local
// subprocess engines (espeak-ng, piper, gtts-cli), online APIs (OpenAI,
// Gemini) and a silent mock. Every engine delivers 16-bit mono PCM at
// speech.SampleRate.
//
// Engines that need the network can be wrapped in a Fallback, which moves
// to a local engine once the online one keeps failing.
package engines
