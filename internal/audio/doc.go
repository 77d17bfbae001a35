// Package audio plays rendered RTTY signals. A Sink takes a buffer of
// mono float32 samples and blocks until it has been played or stopped.
// Real devices are driven through oto/v3 or PortAudio; a WAV file sink and
// a simulated sink are available for headless use and tests.
package audio
