package secrets

import (
	"context"
	"errors"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	secretmanagerpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// LoadFedaPaySecretKey reads the gateway secret key from Secret Manager
// when it is not provided through the environment. secretName is the
// secret id (not the full resource name); version "latest" is used.
func LoadFedaPaySecretKey(ctx context.Context, projectID, secretName string) (string, error) {
	prj := strings.TrimSpace(projectID)
	if prj == "" {
		return "", errors.New("secrets: projectID is empty")
	}
	sid := strings.TrimSpace(secretName)
	if sid == "" {
		return "", errors.New("secrets: secret name is empty")
	}

	sm, err := secretmanager.NewClient(ctx)
	if err != nil {
		return "", errors.New("secrets: secretmanager client init failed: " + err.Error())
	}
	defer sm.Close()

	name := "projects/" + prj + "/secrets/" + sid + "/versions/latest"
	resp, err := sm.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return "", errors.New("secrets: AccessSecretVersion failed (" + name + "): " + err.Error())
	}
	if resp == nil || resp.Payload == nil {
		return "", errors.New("secrets: empty payload (" + name + ")")
	}

	return strings.TrimSpace(string(resp.Payload.Data)), nil
}
