package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	utilruntime "k8s.io/apimachinery/pkg/util/runtime"
	clientgoscheme "k8s.io/client-go/kubernetes/scheme"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
	"sigs.k8s.io/controller-runtime/pkg/client"

	ariadnev1alpha1 "github.com/bayleafwalker/ariadne/api/v1alpha1"
	"github.com/bayleafwalker/ariadne/internal/reader"
	"github.com/bayleafwalker/ariadne/internal/synth"
)

const (
	depsKey     = "dependencies.csv"
	findingsKey = "findings.csv"
)

var (
	scheme = runtime.NewScheme()
)

func init() {
	utilruntime.Must(clientgoscheme.AddToScheme(scheme))
	utilruntime.Must(ariadnev1alpha1.AddToScheme(scheme))
}

func main() {
	var kubeconfig string
	if home := homedir.HomeDir(); home != "" {
		kubeconfig = filepath.Join(home, ".kube", "config")
	} else {
		kubeconfig = os.Getenv("KUBECONFIG")
	}
	flag.StringVar(&kubeconfig, "kubeconfig", kubeconfig, "absolute path to the kubeconfig file")

	var numPlans int
	var namespace string
	var params synth.Params
	var timeout time.Duration

	flag.IntVar(&numPlans, "plans", 10, "Number of UpgradePlans to create")
	flag.StringVar(&namespace, "namespace", "default", "Namespace to create plans in")
	flag.IntVar(&params.Internal, "internal", 200, "Internal artifacts per plan")
	flag.IntVar(&params.External, "external", 400, "External artifacts per plan")
	flag.IntVar(&params.Fanout, "fanout", 4, "Dependencies per internal artifact")
	flag.IntVar(&params.Vulnerable, "vulnerable", 20, "Vulnerable external artifacts per plan")
	flag.BoolVar(&params.BackEdge, "back-edge", true, "Close a dependency cycle in every plan")
	flag.DurationVar(&timeout, "timeout", 5*time.Minute, "How long to wait for each plan")
	flag.Parse()

	config, err := clientcmd.BuildConfigFromFlags("", kubeconfig)
	if err != nil {
		log.Fatalf("Error building kubeconfig: %v", err)
	}

	k8sClient, err := client.New(config, client.Options{Scheme: scheme})
	if err != nil {
		log.Fatalf("Error creating client: %v", err)
	}

	fmt.Printf("Starting load test: %d plans in namespace %s\n", numPlans, namespace)

	var wg sync.WaitGroup
	start := time.Now()
	latencies := make(chan time.Duration, numPlans)

	for i := 0; i < numPlans; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			name := fmt.Sprintf("load-test-plan-%d-%d", start.Unix(), id)

			p := params
			p.Seed = int64(id)
			cm, plan, err := newPlan(namespace, name, p)
			if err != nil {
				fmt.Printf("Error generating plan %s: %v\n", name, err)
				return
			}

			createStart := time.Now()
			fmt.Printf("Creating plan %s\n", name)
			if err := k8sClient.Create(context.Background(), cm); err != nil {
				fmt.Printf("Error creating configmap %s: %v\n", name, err)
				return
			}
			if err := k8sClient.Create(context.Background(), plan); err != nil {
				fmt.Printf("Error creating plan %s: %v\n", name, err)
				return
			}

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			for {
				select {
				case <-ctx.Done():
					fmt.Printf("Timeout waiting for plan %s\n", name)
					return
				case <-time.After(1 * time.Second):
					var current ariadnev1alpha1.UpgradePlan
					if err := k8sClient.Get(ctx, client.ObjectKey{Name: name, Namespace: namespace}, &current); err != nil {
						continue
					}
					switch current.Status.Phase {
					case ariadnev1alpha1.UpgradePlanPhaseAnalyzed:
						latency := time.Since(createStart)
						latencies <- latency
						fmt.Printf("Plan %s analyzed in %v (%d artifacts, %d tiers)\n",
							name, latency, current.Status.ImplicatedCount, current.Status.TierCount)
						return
					case ariadnev1alpha1.UpgradePlanPhaseError:
						fmt.Printf("Plan %s failed: %s\n", name, current.Status.Message)
						return
					}
				}
			}
		}(i)
	}

	wg.Wait()
	close(latencies)
	totalDuration := time.Since(start)

	var totalLatency time.Duration
	count := 0
	for l := range latencies {
		totalLatency += l
		count++
	}

	if count > 0 {
		avgLatency := totalLatency / time.Duration(count)
		fmt.Printf("Load test completed in %v. Avg analysis latency: %v\n", totalDuration, avgLatency)
	} else {
		fmt.Printf("Load test completed in %v. No plans analyzed successfully.\n", totalDuration)
	}
}

// newPlan renders a synthetic graph into a ConfigMap and an UpgradePlan that reads it.
func newPlan(namespace, name string, p synth.Params) (*corev1.ConfigMap, *ariadnev1alpha1.UpgradePlan, error) {
	in := synth.Generate(p)
	deps, err := synth.PomExplorerCSV(in.Dependencies)
	if err != nil {
		return nil, nil, err
	}
	findings, err := synth.FindingsCSV(in.Findings)
	if err != nil {
		return nil, nil, err
	}

	cm := &corev1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
		Data: map[string]string{
			depsKey:     deps,
			findingsKey: findings,
		},
	}
	plan := &ariadnev1alpha1.UpgradePlan{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
		Spec: ariadnev1alpha1.UpgradePlanSpec{
			InternalIdentifiers: []string{synth.InternalIdentifier},
			Dependencies: []ariadnev1alpha1.InputSource{{
				ConfigMapRef: ariadnev1alpha1.ConfigMapKeyRef{Name: name, Key: depsKey},
				Format:       string(reader.FormatPomExplorer),
			}},
			Findings: []ariadnev1alpha1.InputSource{{
				ConfigMapRef: ariadnev1alpha1.ConfigMapKeyRef{Name: name, Key: findingsKey},
				Format:       string(reader.FormatFindingsCSV),
			}},
		},
	}
	return cm, plan, nil
}
