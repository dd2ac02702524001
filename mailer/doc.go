// Package mailer sends the transactional account emails through Amazon SES.
//
// Bodies are rendered from embedded Django style templates and delivered as
// raw MIME messages so the inline logo attachment survives intact.
package mailer
