// Package security groups the gateway's credential and transport security
// packages:
//
//   - secrets resolves ${secret:name} references in configuration from
//     secret files and the environment
//   - tls terminates TLS on the listener with certificate hot reload
package security
