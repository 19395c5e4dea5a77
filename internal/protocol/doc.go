// Package protocol implements the text wire format shared by the relay
// server and its clients.
//
// Every frame is one JSON object tagged by a "type" field:
//
//	join           client -> server   clientId, roomId, language
//	joined         server -> client   clientId, roomId
//	utterance      client -> server   utteranceId?, speakerId, roomId, language, text
//	transcription  server -> client   utteranceId, speakerId, roomId, originalLanguage, targetLanguage, text
//	error          server -> client   message
//
// Unknown fields are ignored so older peers keep working when fields are added.
package protocol
